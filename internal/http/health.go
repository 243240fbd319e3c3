package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks that the backing store answers. *database.Database implements it.
type Pinger interface {
	Ping() error
}

const (
	healthy   = "healthy"
	unhealthy = "unhealthy"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      Pinger
	version string
}

func NewHealthController(db Pinger, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// databaseCheck reports the store state and whether it counts as healthy.
// A missing store is reported but does not fail the check.
func (h *HealthController) databaseCheck() (string, bool) {
	if h.db == nil {
		return "not configured", true
	}
	if err := h.db.Ping(); err != nil {
		return "error: " + err.Error(), false
	}
	return "ok", true
}

// Status reports the server version and the state of its dependencies.
// GET /health
func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  healthy,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  map[string]string{},
	}
	code := http.StatusOK

	check, ok := h.databaseCheck()
	resp.Checks["database"] = check
	if !ok {
		resp.Status = unhealthy
		code = http.StatusServiceUnavailable
	}

	c.IndentedJSON(code, resp)
}

// Ping answers without touching any dependency.
// GET /ping
func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
