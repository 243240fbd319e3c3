package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/entities"
)

// AuditReader pages through recorded audit events.
type AuditReader interface {
	Events(q entities.AuditQuery) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	auditService AuditReader
}

func NewAuditController(auditService AuditReader) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

type auditPage struct {
	events     []entities.AuditEvent
	page       int
	limit      int
	total      int64
	totalPages int
	eventType  string
}

// scopeUserID returns the user whose events the caller may see. Admins
// see everyone's.
func scopeUserID(c *gin.Context) uint {
	if user := auth.GetUser(c); user != nil && user.IsAdmin() {
		return 0
	}
	return auth.GetUserID(c)
}

func (ac *AuditController) load(c *gin.Context, limit int) (auditPage, error) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	p := auditPage{page: page, limit: limit, eventType: c.Query("type")}

	var err error
	p.events, p.total, err = ac.auditService.Events(entities.AuditQuery{
		UserID: scopeUserID(c),
		Type:   entities.AuditEventType(p.eventType),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return p, err
	}

	p.totalPages = (int(p.total) + limit - 1) / limit
	if p.totalPages < 1 {
		p.totalPages = 1
	}
	return p, nil
}

// AuditLogPage renders the audit log UI
// GET /audit
func (ac *AuditController) AuditLogPage(c *gin.Context) {
	p, err := ac.load(c, 25)
	if err != nil {
		respondServiceError(c, err, "load audit events")
		return
	}

	renderPage(c, http.StatusOK, "audit", gin.H{
		"Events":      p.events,
		"CurrentPage": p.page,
		"TotalPages":  p.totalPages,
		"TotalEvents": p.total,
		"EventType":   p.eventType,
		"EventTypes":  eventTypeOptions(),
	})
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	if limit < 1 || limit > 100 {
		limit = 25
	}

	p, err := ac.load(c, limit)
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       p.events,
		"page":         p.page,
		"limit":        p.limit,
		"total_pages":  p.totalPages,
		"total_events": p.total,
	})
}

// EventTypeOption is one entry of the audit page's type filter.
type EventTypeOption struct {
	Value string
	Label string
}

func eventTypeOptions() []EventTypeOption {
	opts := []EventTypeOption{{Value: "", Label: "All Events"}}
	for _, t := range entities.AuditEventTypes {
		label := string(t)
		if t == entities.AuditEventAuth {
			label = "authentication"
		}
		opts = append(opts, EventTypeOption{Value: string(t), Label: strings.ToUpper(label[:1]) + label[1:]})
	}
	return opts
}
