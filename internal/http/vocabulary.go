package http

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/tokenizer"
	"github.com/mrlokans/wordhoard/internal/vocabulary"
)

// VocabularyService is the part of vocabulary.Service the controller uses.
type VocabularyService interface {
	SaveMeaning(userID uint, word, language, meaning string) error
	MarkKnown(userID uint, word, language string) error
	RemoveWord(userID uint, word, language string) error
	Stats(userID uint) (vocabulary.Stats, error)
}

// VocabularyController applies the reader's vocabulary mutations.
type VocabularyController struct {
	service VocabularyService
}

func NewVocabularyController(service VocabularyService) *VocabularyController {
	return &VocabularyController{service: service}
}

// VocabularyRequest is accepted as JSON or as form fields. Referrer and
// DocumentID only steer the redirect after a form post.
type VocabularyRequest struct {
	Word       string `json:"word" form:"word"`
	Language   string `json:"language" form:"language"`
	Meaning    string `json:"meaning" form:"meaning"`
	Referrer   string `json:"referrer" form:"referrer"`
	DocumentID string `json:"id" form:"id"`
}

// VocabularyResult describes the state of a key after a mutation.
type VocabularyResult struct {
	Word     string `json:"word"`
	Language string `json:"language"`
	Action   string `json:"action"`
	Meaning  string `json:"meaning,omitempty"`
}

// resultFor reports the key the service stored under, not the raw input.
func resultFor(req VocabularyRequest, action string) VocabularyResult {
	return VocabularyResult{
		Word:     tokenizer.NormalizeWord(req.Word),
		Language: strings.TrimSpace(req.Language),
		Action:   action,
	}
}

func (vc *VocabularyController) bind(c *gin.Context) (VocabularyRequest, bool) {
	var req VocabularyRequest
	if !auth.IsAuthenticated(c) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return req, false
	}
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return req, false
	}
	return req, true
}

// respond answers a successful mutation: an HTMX partial, JSON for API
// callers, or a redirect back to the page the form was posted from.
func (vc *VocabularyController) respond(c *gin.Context, req VocabularyRequest, result VocabularyResult) {
	switch {
	case isHTMXRequest(c):
		renderPage(c, http.StatusOK, "vocabulary-result", gin.H{"Result": result})
	case isFormPost(c):
		c.Redirect(http.StatusSeeOther, referrerPath(req.Referrer, req.DocumentID))
	default:
		c.JSON(http.StatusOK, result)
	}
}

func (vc *VocabularyController) fail(c *gin.Context, err error, context string) {
	if !isFormPost(c) {
		respondServiceError(c, err, context)
		return
	}
	status, body := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error (%s): %v", context, err)
	}
	renderPage(c, status, "error", gin.H{"Status": status, "Error": body.Error})
}

// isFormPost reports a plain browser form submission.
func isFormPost(c *gin.Context) bool {
	if isHTMXRequest(c) {
		return false
	}
	ct := c.ContentType()
	return ct == gin.MIMEPOSTForm || ct == gin.MIMEMultipartPOSTForm
}

// SaveMeaning sets the meaning of a word; an empty meaning clears it.
// POST /api/vocabulary/meaning
func (vc *VocabularyController) SaveMeaning(c *gin.Context) {
	req, ok := vc.bind(c)
	if !ok {
		return
	}
	if err := vc.service.SaveMeaning(auth.GetUserID(c), req.Word, req.Language, req.Meaning); err != nil {
		vc.fail(c, err, "save meaning")
		return
	}

	result := resultFor(req, "meaning_saved")
	result.Meaning = tokenizer.NormalizeText(req.Meaning)
	if result.Meaning == "" {
		result.Action = "meaning_cleared"
	}
	vc.respond(c, req, result)
}

// MarkKnown adds a word to the known set.
// POST /api/vocabulary/known
func (vc *VocabularyController) MarkKnown(c *gin.Context) {
	req, ok := vc.bind(c)
	if !ok {
		return
	}
	if err := vc.service.MarkKnown(auth.GetUserID(c), req.Word, req.Language); err != nil {
		vc.fail(c, err, "mark known")
		return
	}
	vc.respond(c, req, resultFor(req, "marked_known"))
}

// Remove deletes both the known mark and the meaning of a word.
// POST /api/vocabulary/remove
func (vc *VocabularyController) Remove(c *gin.Context) {
	req, ok := vc.bind(c)
	if !ok {
		return
	}
	if err := vc.service.RemoveWord(auth.GetUserID(c), req.Word, req.Language); err != nil {
		vc.fail(c, err, "remove word")
		return
	}
	vc.respond(c, req, resultFor(req, "removed"))
}

// Stats returns the acting user's vocabulary counts.
// GET /api/vocabulary/stats
func (vc *VocabularyController) Stats(c *gin.Context) {
	stats, err := vc.service.Stats(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "vocabulary stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
