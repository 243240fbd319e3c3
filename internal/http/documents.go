package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordhoard/internal/documents"
	"github.com/mrlokans/wordhoard/internal/entities"
)

// DocumentService is the part of documents.Service the controllers use.
type DocumentService interface {
	Create(uploader *entities.User, up documents.Upload) (*entities.Document, error)
	Get(id string) (*entities.Document, error)
	List() ([]entities.Document, error)
	Delete(actor *entities.User, id string) error
	Languages() []string
}

// SiteStats reports global counts for the admin page.
type SiteStats interface {
	GetStats() (totalDocuments int64, totalUsers int64, err error)
}

// DocumentsController serves the community page, uploads and admin deletion.
type DocumentsController struct {
	service  DocumentService
	maxBytes int64
	stats    SiteStats
}

// NewDocumentsController creates the controller. maxBytes caps the upload
// request body; zero leaves it unbounded.
func NewDocumentsController(service DocumentService, maxBytes int64) *DocumentsController {
	return &DocumentsController{service: service, maxBytes: maxBytes}
}

// CommunityPage lists every document with the upload form.
// GET /
func (dc *DocumentsController) CommunityPage(c *gin.Context) {
	docs, err := dc.service.List()
	if err != nil {
		respondServiceError(c, err, "list documents")
		return
	}
	renderPage(c, http.StatusOK, "community", gin.H{
		"Documents": docs,
		"Languages": dc.service.Languages(),
	})
}

// ListAPI returns every document as JSON.
// GET /api/documents
func (dc *DocumentsController) ListAPI(c *gin.Context) {
	docs, err := dc.service.List()
	if err != nil {
		respondInternalError(c, err, "list documents")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     len(docs),
	})
}

// Upload stores a multipart upload with fields file, title, author and language.
// POST /documents
func (dc *DocumentsController) Upload(c *gin.Context) {
	user := actingUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	if dc.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, dc.maxBytes)
	}

	// FormFile parses the multipart body first so an oversized request
	// surfaces here as *http.MaxBytesError.
	var upload documents.Upload
	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			respondServiceError(c, err, "open upload")
			return
		}
		defer file.Close()
		upload.Filename = fileHeader.Filename
		upload.Body = file
	case isTooLarge(err):
		dc.respondUploadError(c, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}
	// A missing file is reported by validation.
	upload.Title = c.PostForm("title")
	upload.Author = c.PostForm("author")
	upload.Language = c.PostForm("language")

	doc, err := dc.service.Create(user, upload)
	if err != nil {
		status, body := statusForError(err)
		if status == http.StatusInternalServerError {
			respondServiceError(c, err, "create document")
			return
		}
		dc.respondUploadError(c, status, body.Error)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, doc)
		return
	}
	c.Redirect(http.StatusSeeOther, "/read/"+doc.ID)
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func (dc *DocumentsController) respondUploadError(c *gin.Context, status int, message string) {
	if wantsJSON(c) {
		c.JSON(status, ErrorResponse{Error: message})
		return
	}
	docs, err := dc.service.List()
	if err != nil {
		respondServiceError(c, err, "list documents")
		return
	}
	renderPage(c, status, "community", gin.H{
		"Documents": docs,
		"Languages": dc.service.Languages(),
		"Error":     message,
	})
}

// AdminPage lists documents with delete controls.
// GET /admin
func (dc *DocumentsController) AdminPage(c *gin.Context) {
	docs, err := dc.service.List()
	if err != nil {
		respondServiceError(c, err, "list documents")
		return
	}
	data := gin.H{"Documents": docs, "TotalDocuments": int64(len(docs))}
	if dc.stats != nil {
		totalDocuments, totalUsers, err := dc.stats.GetStats()
		if err != nil {
			respondServiceError(c, err, "site stats")
			return
		}
		data["TotalDocuments"] = totalDocuments
		data["TotalUsers"] = totalUsers
	}
	renderPage(c, http.StatusOK, "admin", data)
}

// Delete removes a document.
// DELETE /api/documents/:id and POST /admin/documents/:id/delete
func (dc *DocumentsController) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := dc.service.Delete(actingUser(c), id); err != nil {
		respondServiceError(c, err, "delete document")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, SuccessResponse{Message: "document deleted", Data: gin.H{"id": id}})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}
