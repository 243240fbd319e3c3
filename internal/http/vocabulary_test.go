package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/entities"
	"github.com/mrlokans/wordhoard/internal/vocabulary"
)

type recordingVocabulary struct {
	calls []string
	err   error
}

func (v *recordingVocabulary) SaveMeaning(userID uint, word, language, meaning string) error {
	v.calls = append(v.calls, "meaning:"+word+":"+language+":"+meaning)
	return v.err
}

func (v *recordingVocabulary) MarkKnown(userID uint, word, language string) error {
	v.calls = append(v.calls, "known:"+word+":"+language)
	return v.err
}

func (v *recordingVocabulary) RemoveWord(userID uint, word, language string) error {
	v.calls = append(v.calls, "remove:"+word+":"+language)
	return v.err
}

func (v *recordingVocabulary) Stats(userID uint) (vocabulary.Stats, error) {
	return vocabulary.Stats{}, v.err
}

func vocabularyRouter(service VocabularyService, userID uint) *gin.Engine {
	controller := NewVocabularyController(service)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, userID)
		c.Next()
	})
	router.POST("/api/vocabulary/meaning", controller.SaveMeaning)
	router.POST("/api/vocabulary/known", controller.MarkKnown)
	router.POST("/api/vocabulary/remove", controller.Remove)
	return router
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestVocabularyController_RejectsAnonymous(t *testing.T) {
	service := &recordingVocabulary{}
	router := vocabularyRouter(service, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, formRequest("/api/vocabulary/known", url.Values{"word": {"hus"}, "language": {"Dutch"}}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, service.calls)
}

func TestVocabularyController_HTMXAnswersWithResult(t *testing.T) {
	service := &recordingVocabulary{}
	router := vocabularyRouter(service, 7)

	req := formRequest("/api/vocabulary/meaning", url.Values{"word": {"hus"}, "language": {"Dutch"}, "meaning": {"huis"}})
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"Result":{"word":"hus","language":"Dutch","action":"meaning_saved","meaning":"huis"}}`, w.Body.String())
	assert.Equal(t, []string{"meaning:hus:Dutch:huis"}, service.calls)
}

func TestVocabularyController_FormErrorRendersErrorPage(t *testing.T) {
	service := &recordingVocabulary{err: entities.NewValidationError("language", "unsupported language Klingon")}
	router := vocabularyRouter(service, 7)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, formRequest("/api/vocabulary/known", url.Values{"word": {"hus"}, "language": {"Klingon"}}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"Status":400,"Error":"unsupported language Klingon"}`, w.Body.String())
}

func TestVocabularyController_ResultCarriesStoredKey(t *testing.T) {
	service := &recordingVocabulary{}
	router := vocabularyRouter(service, 7)

	tests := []struct {
		path     string
		body     string
		expected string
	}{
		{
			path:     "/api/vocabulary/meaning",
			body:     `{"word":"  Huis ","language":" Dutch ","meaning":"  house "}`,
			expected: `{"word":"huis","language":"Dutch","action":"meaning_saved","meaning":"house"}`,
		},
		{
			path:     "/api/vocabulary/meaning",
			body:     `{"word":"HUIS","language":"Dutch","meaning":"   "}`,
			expected: `{"word":"huis","language":"Dutch","action":"meaning_cleared"}`,
		},
		{
			path:     "/api/vocabulary/known",
			body:     `{"word":" Tuin","language":"Dutch "}`,
			expected: `{"word":"tuin","language":"Dutch","action":"marked_known"}`,
		},
		{
			path:     "/api/vocabulary/remove",
			body:     `{"word":"TUIN ","language":" Dutch"}`,
			expected: `{"word":"tuin","language":"Dutch","action":"removed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("POST", tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.expected, w.Body.String())
		})
	}
}
