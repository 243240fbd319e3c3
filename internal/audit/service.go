// Package audit records who uploaded, deleted, annotated or signed in.
// Events are written off the request path; Wait drains them on shutdown.
package audit

import (
	"log"
	"sync"
	"time"

	"github.com/mrlokans/wordhoard/internal/database/audit"
	"github.com/mrlokans/wordhoard/internal/entities"
)

const (
	maxDescription = 500
	maxEntityKey   = 255
)

type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
	now     func() time.Time
}

func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record writes event synchronously.
func (s *Service) Record(event *entities.AuditEvent) error {
	return s.repo.Record(event)
}

func (s *Service) recordAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.Record(event); err != nil {
			log.Printf("[AUDIT] Failed to record %s: %v", event.Action, err)
		}
	}()
}

// Wait blocks until every queued event has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

func event(userID uint, typ entities.AuditEventType, action string) *entities.AuditEvent {
	return &entities.AuditEvent{
		UserID:    userID,
		EventType: typ,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
	}
}

// LogUpload records an upload attempt. A non-nil err marks it failed.
func (s *Service) LogUpload(userID uint, documentID, title string, err error) {
	e := event(userID, entities.AuditEventUpload, "document_upload")
	e.Description = truncate("Uploaded document: "+title, maxDescription)
	e.EntityType = "document"
	e.EntityKey = documentID
	if err != nil {
		e.Status = entities.AuditStatusFailed
		e.ErrorMsg = truncate(err.Error(), maxDescription)
	}
	s.recordAsync(e)
}

func (s *Service) LogDelete(userID uint, entityType, entityKey, entityName string) {
	e := event(userID, entities.AuditEventDelete, entityType+"_delete")
	e.Description = truncate("Deleted "+entityType+": "+entityName, maxDescription)
	e.EntityType = entityType
	e.EntityKey = truncate(entityKey, maxEntityKey)
	s.recordAsync(e)
}

// LogVocabulary records a known, unknown or meaning change for key.
func (s *Service) LogVocabulary(userID uint, action string, key entities.VocabularyKey) {
	e := event(userID, entities.AuditEventVocabulary, action)
	e.Description = truncate(key.Word+" ("+key.Language+")", maxDescription)
	e.EntityType = "word"
	e.EntityKey = truncate(key.Language+":"+key.Word, maxEntityKey)
	s.recordAsync(e)
}

func (s *Service) LogAuth(userID uint, action string, ipAddr string, success bool) {
	e := event(userID, entities.AuditEventAuth, action)
	e.IPAddress = ipAddr
	if !success {
		e.Status = entities.AuditStatusFailed
	}
	s.recordAsync(e)
}

// Events returns a page of the log and the total number of matches.
func (s *Service) Events(q entities.AuditQuery) ([]entities.AuditEvent, int64, error) {
	return s.repo.Find(q)
}

// DeleteOldEvents removes events older than retention.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.PruneBefore(s.now().Add(-retention))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
