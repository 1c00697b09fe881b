package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/google-importer/internal/entities"
)

// NotificationLister is implemented by notifications.Service.
type NotificationLister interface {
	List(userID string, limit int) ([]entities.Notification, error)
}

type NotificationsController struct {
	notifications NotificationLister
}

func NewNotificationsController(notifications NotificationLister) *NotificationsController {
	return &NotificationsController{notifications: notifications}
}

// NotificationView is a notification with its parameters decoded.
type NotificationView struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Params    map[string]any `json:"params,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// List handles GET /api/notifications
func (nc *NotificationsController) List(c *gin.Context) {
	limit, ok := parseQueryLimit(c, 20)
	if !ok {
		return
	}

	rows, err := nc.notifications.List(GetUserID(c), limit)
	if err != nil {
		respondInternalError(c, err, "list notifications")
		return
	}

	views := make([]NotificationView, 0, len(rows))
	for _, n := range rows {
		view := NotificationView{ID: n.ID, Type: string(n.Type), CreatedAt: n.CreatedAt}
		if n.Params != "" {
			_ = json.Unmarshal([]byte(n.Params), &view.Params)
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, gin.H{"notifications": views})
}
