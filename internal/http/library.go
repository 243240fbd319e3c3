package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/entities"
	"github.com/mrlokans/wordhoard/internal/library"
)

// LibraryBuilder aggregates a user's meanings across documents.
type LibraryBuilder interface {
	Build(userID uint) (*library.Library, error)
}

type LibraryController struct {
	builder LibraryBuilder
}

func NewLibraryController(builder LibraryBuilder) *LibraryController {
	return &LibraryController{builder: builder}
}

// LibraryPage renders every glossed word grouped by language. Entries of
// the unspecified bucket are shown read-only.
// GET /library
func (lc *LibraryController) LibraryPage(c *gin.Context) {
	lib, err := lc.builder.Build(auth.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "build library")
		return
	}
	renderPage(c, http.StatusOK, "library", gin.H{
		"Library":     lib,
		"Total":       lib.Len(),
		"Unspecified": entities.UnspecifiedLanguage,
	})
}

// LibraryAPI returns the library as JSON.
// GET /api/library
func (lc *LibraryController) LibraryAPI(c *gin.Context) {
	lib, err := lc.builder.Build(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "build library")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"groups": lib.Groups,
		"total":  lib.Len(),
	})
}
