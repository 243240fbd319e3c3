// Package documents creates, lists and deletes uploaded texts.
package documents

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/wordhoard/internal/entities"
	"github.com/mrlokans/wordhoard/internal/extract"
	"github.com/mrlokans/wordhoard/internal/languages"
)

// ErrForbidden is returned when a non-admin tries to delete a document.
var ErrForbidden = errors.New("only admins can delete documents")

// Store is the document persistence the service needs.
type Store interface {
	Create(doc *entities.Document) error
	GetByID(id string) (*entities.Document, error)
	List() ([]entities.Document, error)
	Delete(id string) error
}

// Recorder receives uploads and deletions. The audit service implements it.
type Recorder interface {
	LogUpload(userID uint, documentID, title string, err error)
	LogDelete(userID uint, entityType, entityKey, entityName string)
}

// Upload is a document submission before validation.
type Upload struct {
	Title    string
	Author   string
	Language string
	Filename string
	Body     io.Reader
}

type Service struct {
	store     Store
	languages *languages.Set
	recorder  Recorder
	now       func() time.Time
}

// NewService creates the service. recorder may be nil.
func NewService(store Store, allowed *languages.Set, recorder Recorder) *Service {
	return &Service{
		store:     store,
		languages: allowed,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Create validates the upload, extracts its text and stores a new document
// owned by uploader.
func (s *Service) Create(uploader *entities.User, up Upload) (*entities.Document, error) {
	doc, err := s.build(uploader, up)
	if err == nil {
		err = s.store.Create(doc)
	}

	if s.recorder != nil {
		id, title := "", strings.TrimSpace(up.Title)
		if doc != nil {
			id = doc.ID
		}
		s.recorder.LogUpload(uploader.ID, id, title, err)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) build(uploader *entities.User, up Upload) (*entities.Document, error) {
	title := strings.TrimSpace(up.Title)
	author := strings.TrimSpace(up.Author)
	language := strings.TrimSpace(up.Language)

	switch {
	case title == "":
		return nil, entities.NewValidationError("title", "title is required")
	case author == "":
		return nil, entities.NewValidationError("author", "author is required")
	case language == "":
		return nil, entities.NewValidationError("language", "language is required")
	case !s.languages.Contains(language):
		return nil, entities.NewValidationError("language", "unsupported language "+language)
	case up.Body == nil || up.Filename == "":
		return nil, entities.NewValidationError("file", "file is required")
	}

	format, err := extract.FormatFromFilename(up.Filename)
	if err != nil {
		return nil, entities.NewValidationError("file", "only .txt, .docx and .html files are allowed")
	}

	content, err := extract.Text(format, up.Body)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyDocument) {
			return nil, entities.NewValidationError("file", err.Error())
		}
		return nil, entities.NewValidationError("file", fmt.Sprintf("could not read %s: %v", up.Filename, err))
	}

	return &entities.Document{
		ID:        uuid.NewString(),
		Title:     title,
		Author:    author,
		Uploader:  uploader.Username,
		Language:  language,
		Content:   content,
		Filename:  up.Filename,
		Format:    format,
		UserID:    uploader.ID,
		CreatedAt: s.now(),
	}, nil
}

// Get returns the document or an error wrapping entities.ErrNotFound.
func (s *Service) Get(id string) (*entities.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("document %s: %w", id, entities.ErrNotFound)
	}
	return s.store.GetByID(id)
}

// List returns every document, newest first.
func (s *Service) List() ([]entities.Document, error) {
	return s.store.List()
}

// Delete removes a document on behalf of actor, who must be an admin.
func (s *Service) Delete(actor *entities.User, id string) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrForbidden
	}
	doc, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(doc.ID); err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.LogDelete(actor.ID, "document", doc.ID, doc.Title)
	}
	return nil
}

// Languages returns the allowed language names in order.
func (s *Service) Languages() []string {
	return s.languages.List()
}
