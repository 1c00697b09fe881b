package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/calendar/v3"

	"github.com/mrlokans/google-importer/internal/importers"
)

// CalendarService is implemented by importers.CalendarImporter.
type CalendarService interface {
	CalendarList(ctx context.Context, userID string) ([]*calendar.CalendarListEntry, error)
	ImportCalendar(ctx context.Context, userID, calID, calName, color string) (*importers.CalendarImportResult, error)
}

type CalendarController struct {
	calendars CalendarService
}

func NewCalendarController(calendars CalendarService) *CalendarController {
	return &CalendarController{calendars: calendars}
}

// CalendarSummary is one entry of the remote calendar list.
type CalendarSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	Primary  bool   `json:"primary,omitempty"`
	ReadOnly bool   `json:"readOnly,omitempty"`
}

// GetCalendarList handles GET /api/google/calendars
func (cc *CalendarController) GetCalendarList(c *gin.Context) {
	entries, err := cc.calendars.CalendarList(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondGoogleError(c, err)
		return
	}

	list := make([]CalendarSummary, 0, len(entries))
	for _, e := range entries {
		name := e.SummaryOverride
		if name == "" {
			name = e.Summary
		}
		list = append(list, CalendarSummary{
			ID:       e.Id,
			Name:     name,
			Color:    e.BackgroundColor,
			Primary:  e.Primary,
			ReadOnly: e.AccessRole == "reader" || e.AccessRole == "freeBusyReader",
		})
	}
	c.JSON(http.StatusOK, gin.H{"calendars": list})
}

// ImportCalendarRequest is the body of POST /api/google/calendars/import.
type ImportCalendarRequest struct {
	CalID   string `json:"calId" form:"calId" binding:"required"`
	CalName string `json:"calName" form:"calName" binding:"required"`
	Color   string `json:"color" form:"color"`
}

// ImportCalendar handles POST /api/google/calendars/import
func (cc *CalendarController) ImportCalendar(c *gin.Context) {
	var req ImportCalendarRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "calId and calName are required")
		return
	}

	result, err := cc.calendars.ImportCalendar(c.Request.Context(), GetUserID(c), req.CalID, req.CalName, req.Color)
	if err != nil {
		respondGoogleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
