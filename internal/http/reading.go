package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/entities"
	"github.com/mrlokans/wordhoard/internal/overlay"
)

// ReadingRenderer builds the annotated view of a document for one user.
type ReadingRenderer interface {
	Render(doc *entities.Document, userID uint) (*overlay.Reading, error)
}

// DocumentGetter loads one document.
type DocumentGetter interface {
	Get(id string) (*entities.Document, error)
}

// ReadingController serves the reading view of a document.
type ReadingController struct {
	documents DocumentGetter
	renderer  ReadingRenderer
}

func NewReadingController(documents DocumentGetter, renderer ReadingRenderer) *ReadingController {
	return &ReadingController{documents: documents, renderer: renderer}
}

// readingResponse is the JSON form of a reading.
type readingResponse struct {
	*overlay.Reading
	Spans []overlay.Span `json:"spans"`
}

func (rc *ReadingController) load(c *gin.Context) (*overlay.Reading, bool) {
	doc, err := rc.documents.Get(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "load document")
		return nil, false
	}
	reading, err := rc.renderer.Render(doc, auth.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "render document")
		return nil, false
	}
	return reading, true
}

// ReadPage renders the annotated document.
// GET /read/:id
func (rc *ReadingController) ReadPage(c *gin.Context) {
	reading, ok := rc.load(c)
	if !ok {
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, readingResponse{Reading: reading, Spans: reading.Spans()})
		return
	}
	renderPage(c, http.StatusOK, "read", gin.H{
		"Reading": reading,
		"Spans":   reading.Spans(),
	})
}

// ReadingAPI returns the reading as JSON.
// GET /api/documents/:id/reading
func (rc *ReadingController) ReadingAPI(c *gin.Context) {
	reading, ok := rc.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, readingResponse{Reading: reading, Spans: reading.Spans()})
}
