package http

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/google-importer/internal/database"
	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/settingsstore"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
	// ActiveImports counts users with a running Photos or Drive import.
	ActiveImports map[entities.ImportDomain]int `json:"activeImports,omitempty"`
}

// HealthCheck reports a dependency failure as a non-nil error.
type HealthCheck func() error

// ActiveSessionLister is implemented by settingsstore.SettingsStore.
type ActiveSessionLister interface {
	ListActiveSessions(domain entities.ImportDomain) ([]settingsstore.UserSession, error)
}

type HealthController struct {
	version  string
	checks   map[string]HealthCheck
	sessions ActiveSessionLister
}

// NewHealthController checks db when it is not nil. More checks are added
// with AddCheck.
func NewHealthController(db *database.Database, version string) *HealthController {
	h := &HealthController{
		version: version,
		checks:  make(map[string]HealthCheck),
	}
	if db != nil {
		h.AddCheck("database", databaseCheck(db))
	}
	return h
}

func databaseCheck(db *database.Database) HealthCheck {
	return func() error {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	}
}

// AddCheck registers a dependency check under name, replacing any check
// registered under the same name.
func (h *HealthController) AddCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// WithSessions makes Status report the number of active imports.
func (h *HealthController) WithSessions(sessions ActiveSessionLister) *HealthController {
	h.sessions = sessions
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	health := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  make(map[string]string, len(h.checks)),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.checks[name](); err != nil {
			health.Checks[name] = "error: " + err.Error()
			health.Status = "unhealthy"
		} else {
			health.Checks[name] = "ok"
		}
	}

	if h.sessions != nil {
		health.ActiveImports = make(map[entities.ImportDomain]int)
		for _, domain := range []entities.ImportDomain{entities.ImportDomainPhotos, entities.ImportDomainDrive} {
			sessions, err := h.sessions.ListActiveSessions(domain)
			if err != nil {
				health.Checks["sessions"] = "error: " + err.Error()
				health.Status = "unhealthy"
				break
			}
			health.ActiveImports[domain] = len(sessions)
		}
	}

	statusCode := http.StatusOK
	if health.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.IndentedJSON(statusCode, health)
}
