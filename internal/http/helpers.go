package http

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/documents"
	"github.com/mrlokans/wordhoard/internal/entities"
)

// contextKeyTemplates is set when HTML templates were loaded. Without them
// every page answers with its data as JSON.
const contextKeyTemplates = "html_templates"

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"` // rejected input, for validation errors
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// statusForError maps service errors onto HTTP status codes and the message
// safe to show to the client.
func statusForError(err error) (int, ErrorResponse) {
	var ve *entities.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorResponse{Error: ve.Reason, Field: ve.Field}
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not found"}
	case errors.Is(err, documents.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
	}
}

// respondServiceError answers with the status matching err, as JSON for API
// and HTMX callers and as the error page otherwise.
func respondServiceError(c *gin.Context, err error, context string) {
	status, body := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error (%s): %v", context, err)
	}
	if wantsJSON(c) {
		c.JSON(status, body)
		return
	}
	renderPage(c, status, "error", gin.H{"Status": status, "Error": body.Error})
}

// --- Request Classification ---

// isHTMXRequest returns true if the request is an HTMX request.
func isHTMXRequest(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// wantsJSON reports whether the caller expects a JSON body: API paths,
// HTMX requests and clients asking for JSON explicitly.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || isHTMXRequest(c) {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// --- Page Rendering ---

// page adds the data every full page needs.
func page(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Auth"] = GetAuthTemplateData(c)
	return data
}

// renderPage renders a named template, or the data as JSON when the router
// was started without templates.
func renderPage(c *gin.Context, status int, name string, data gin.H) {
	if !c.GetBool(contextKeyTemplates) {
		delete(data, "Auth")
		c.JSON(status, data)
		return
	}
	c.HTML(status, name, page(c, data))
}

// --- Redirects ---

// referrerPath returns where a form post should send the browser back to.
// Only the reading page of a well-formed document id and the library are
// honoured; anything else goes home.
func referrerPath(referrer, docID string) string {
	switch referrer {
	case "read":
		if _, err := uuid.Parse(docID); err == nil {
			return "/read/" + url.PathEscape(docID)
		}
	case "library":
		return "/library"
	}
	return "/"
}

// actingUser returns the request's user, or nil for an anonymous request.
func actingUser(c *gin.Context) *entities.User {
	return auth.GetUser(c)
}
