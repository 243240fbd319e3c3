package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordhoard/internal/audit"
	"github.com/mrlokans/wordhoard/internal/auth"
	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/database"
	auditrepo "github.com/mrlokans/wordhoard/internal/database/audit"
	docrepo "github.com/mrlokans/wordhoard/internal/database/documents"
	vocabrepo "github.com/mrlokans/wordhoard/internal/database/vocabulary"
	"github.com/mrlokans/wordhoard/internal/documents"
	"github.com/mrlokans/wordhoard/internal/entities"
	"github.com/mrlokans/wordhoard/internal/languages"
	"github.com/mrlokans/wordhoard/internal/library"
	"github.com/mrlokans/wordhoard/internal/overlay"
	"github.com/mrlokans/wordhoard/internal/vocabulary"
)

type testApp struct {
	router    *gin.Engine
	db        *database.Database
	documents *documents.Service
	audit     *audit.Service
}

type testAppOptions struct {
	maxUploadBytes int64
	templatesPath  string
}

func newTestApp(t *testing.T, opts testAppOptions) *testApp {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.EnsureDefaultUser()
	require.NoError(t, err)

	allowed := languages.Default()
	vocab := vocabrepo.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	t.Cleanup(auditService.Wait)

	docs := documents.NewService(docrepo.NewRepository(db.DB), allowed, auditService)
	vocabService := vocabulary.NewService(vocab, allowed, auditService, vocabulary.Options{MeaningImpliesKnown: true})

	if opts.maxUploadBytes == 0 {
		opts.maxUploadBytes = 1 << 20
	}
	if opts.templatesPath == "" {
		opts.templatesPath = t.TempDir()
	}

	router, stop := NewRouter(RouterConfig{
		Documents:      docs,
		Vocabulary:     vocabService,
		Renderer:       overlay.NewMerger(vocab),
		Library:        library.NewAggregator(vocab),
		Database:       db,
		SiteStats:      db,
		Audit:          auditService,
		AuthConfig:     config.Auth{Mode: config.AuthModeNone},
		MaxUploadBytes: opts.maxUploadBytes,
		TemplatesPath:  opts.templatesPath,
	})
	t.Cleanup(stop)

	return &testApp{router: router, db: db, documents: docs, audit: auditService}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Accept", "application/json")
	return a.do(req)
}

func (a *testApp) postJSON(path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *testApp) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func uploadRequest(t *testing.T, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req
}

func (a *testApp) upload(t *testing.T, language, content string) entities.Document {
	t.Helper()
	w := a.do(uploadRequest(t, map[string]string{
		"title":    "Test text",
		"author":   "Anonymous",
		"language": language,
	}, "text.txt", content))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var doc entities.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	return doc
}

type readingBody struct {
	DocumentID  string               `json:"document_id"`
	Meanings    map[string]string    `json:"meanings"`
	Annotations []overlay.Annotation `json:"annotations"`
	Summary     overlay.Summary      `json:"summary"`
	Spans       []overlay.Span       `json:"spans"`
}

func (a *testApp) reading(t *testing.T, id string) readingBody {
	t.Helper()
	w := a.get("/api/documents/" + id + "/reading")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body readingBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func annotationFor(annotations []overlay.Annotation, word string) overlay.Annotation {
	for _, a := range annotations {
		if a.Word == word {
			return a
		}
	}
	return overlay.Annotation{}
}

func TestRouter_UploadAndRead(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	doc := app.upload(t, "Old English", "Se hus is god. Hus!")

	assert.Equal(t, "Old English", doc.Language)
	assert.Equal(t, entities.DefaultUsername, doc.Uploader)

	body := app.reading(t, doc.ID)
	assert.Equal(t, doc.ID, body.DocumentID)
	assert.Equal(t, 5, body.Summary.Tokens)
	assert.Equal(t, 4, body.Summary.Distinct)
	assert.Equal(t, 4, body.Summary.Unannotated)
	assert.Empty(t, body.Meanings)

	w := app.get("/api/documents")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), doc.ID)
}

func TestRouter_SaveMeaningShowsInReading(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	doc := app.upload(t, "Old English", "Se hus is god. Hus!")

	w := app.postJSON("/api/vocabulary/meaning", gin.H{"word": "hus", "language": "Old English", "meaning": "house"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result VocabularyResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "meaning_saved", result.Action)

	body := app.reading(t, doc.ID)
	assert.Equal(t, "house", body.Meanings["hus"])
	assert.Equal(t, overlay.StatusGlossed, annotationFor(body.Annotations, "hus").Status)
	assert.Equal(t, 1, body.Summary.Glossed)

	var glossed []string
	for _, span := range body.Spans {
		if span.Status == overlay.StatusGlossed {
			glossed = append(glossed, span.Text)
		}
	}
	assert.Equal(t, []string{"hus", "Hus"}, glossed)
}

func TestRouter_MarkKnownFormRedirectsToReferrer(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	doc := app.upload(t, "Old English", "Se hus is god.")

	w := app.postForm("/api/vocabulary/known", url.Values{
		"word":     {"god"},
		"language": {"Old English"},
		"referrer": {"read"},
		"id":       {doc.ID},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/read/"+doc.ID, w.Header().Get("Location"))

	body := app.reading(t, doc.ID)
	assert.Equal(t, overlay.StatusKnown, annotationFor(body.Annotations, "god").Status)

	w = app.postForm("/api/vocabulary/known", url.Values{
		"word":     {"se"},
		"language": {"Old English"},
		"referrer": {"https://example.com"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRouter_VocabularyValidation(t *testing.T) {
	app := newTestApp(t, testAppOptions{})

	tests := []struct {
		name      string
		path      string
		body      gin.H
		wantField string
	}{
		{name: "unknown language", path: "/api/vocabulary/meaning", body: gin.H{"word": "hus", "language": "Klingon", "meaning": "x"}, wantField: "language"},
		{name: "missing word", path: "/api/vocabulary/known", body: gin.H{"language": "Dutch"}, wantField: "word"},
		{name: "missing language", path: "/api/vocabulary/known", body: gin.H{"word": "hus"}, wantField: "language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.postJSON(tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantField, resp.Field)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRouter_EmptyMeaningKeepsKnownMark(t *testing.T) {
	app := newTestApp(t, testAppOptions{})

	require.Equal(t, http.StatusOK, app.postJSON("/api/vocabulary/meaning", gin.H{"word": "hus", "language": "Dutch", "meaning": "house"}).Code)
	w := app.postJSON("/api/vocabulary/meaning", gin.H{"word": "hus", "language": "Dutch", "meaning": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "meaning_cleared")

	w = app.get("/api/vocabulary/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"known_words":1,"meanings":0}`, w.Body.String())
}

func TestRouter_LibraryGroupsByLanguage(t *testing.T) {
	app := newTestApp(t, testAppOptions{})

	require.Equal(t, http.StatusOK, app.postJSON("/api/vocabulary/meaning", gin.H{"word": "hus", "language": "German", "meaning": "Haus"}).Code)
	require.Equal(t, http.StatusOK, app.postJSON("/api/vocabulary/meaning", gin.H{"word": "hus", "language": "Dutch", "meaning": "huis"}).Code)

	w := app.get("/api/library")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Groups []library.LanguageGroup `json:"groups"`
		Total  int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Groups, 2)
	assert.Equal(t, "Dutch", body.Groups[0].Language)
	assert.Equal(t, []library.Entry{{Word: "hus", Meaning: "huis"}}, body.Groups[0].Entries)
	assert.Equal(t, "German", body.Groups[1].Language)
	assert.Equal(t, []library.Entry{{Word: "hus", Meaning: "Haus"}}, body.Groups[1].Entries)
}

func TestRouter_RemoveIsIdempotent(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	require.Equal(t, http.StatusOK, app.postJSON("/api/vocabulary/meaning", gin.H{"word": "hus", "language": "Dutch", "meaning": "huis"}).Code)

	for i := 0; i < 2; i++ {
		w := app.postForm("/api/vocabulary/remove", url.Values{
			"word":     {"hus"},
			"language": {"Dutch"},
			"referrer": {"library"},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/library", w.Header().Get("Location"))
	}

	w := app.get("/api/vocabulary/stats")
	assert.JSONEq(t, `{"known_words":0,"meanings":0}`, w.Body.String())
}

func TestRouter_ReadingNotFound(t *testing.T) {
	app := newTestApp(t, testAppOptions{})

	assert.Equal(t, http.StatusNotFound, app.get("/api/documents/3f2b8a6e-9c1d-4e5f-8a7b-6c5d4e3f2a1b/reading").Code)
	assert.Equal(t, http.StatusNotFound, app.get("/api/documents/not-a-uuid/reading").Code)
	assert.Equal(t, http.StatusNotFound, app.get("/read/not-a-uuid").Code)
}

func TestRouter_UploadValidation(t *testing.T) {
	app := newTestApp(t, testAppOptions{maxUploadBytes: 4096})
	valid := map[string]string{"title": "T", "author": "A", "language": "Dutch"}

	tests := []struct {
		name       string
		fields     map[string]string
		filename   string
		content    string
		wantStatus int
	}{
		{name: "missing title", fields: map[string]string{"author": "A", "language": "Dutch"}, filename: "a.txt", content: "hus", wantStatus: http.StatusBadRequest},
		{name: "unknown language", fields: map[string]string{"title": "T", "author": "A", "language": "Klingon"}, filename: "a.txt", content: "hus", wantStatus: http.StatusBadRequest},
		{name: "missing file", fields: valid, wantStatus: http.StatusBadRequest},
		{name: "unsupported extension", fields: valid, filename: "a.pdf", content: "hus", wantStatus: http.StatusBadRequest},
		{name: "too large", fields: valid, filename: "a.txt", content: strings.Repeat("hus ", 4096), wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(uploadRequest(t, tt.fields, tt.filename, tt.content))
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	docs, err := app.documents.List()
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRouter_AdminDelete(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	first := app.upload(t, "Dutch", "Het huis.")
	second := app.upload(t, "Dutch", "De boom.")

	req := httptest.NewRequest("DELETE", "/api/documents/"+first.ID, nil)
	w := app.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusNotFound, app.get("/api/documents/"+first.ID+"/reading").Code)

	w = app.postForm("/admin/documents/"+second.ID+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	req = httptest.NewRequest("DELETE", "/api/documents/"+first.ID, nil)
	assert.Equal(t, http.StatusNotFound, app.do(req).Code)
}

func TestRouter_AdminPage(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	app.upload(t, "Dutch", "Het huis.")

	w := app.get("/admin")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TotalDocuments int64 `json:"TotalDocuments"`
		TotalUsers     int64 `json:"TotalUsers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.TotalDocuments)
	assert.Equal(t, int64(1), body.TotalUsers)
}

func TestRouter_ProfileWithoutAuth(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	require.Equal(t, http.StatusOK, app.postJSON("/api/vocabulary/known", gin.H{"word": "hus", "language": "Dutch"}).Code)

	w := app.get("/profile")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"known_words":1`)
	assert.Contains(t, w.Body.String(), `"TokensEnabled":false`)

	w = app.do(httptest.NewRequest("POST", "/profile/token", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AuditLog(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	app.upload(t, "Dutch", "Het huis.")
	require.Equal(t, http.StatusOK, app.postJSON("/api/vocabulary/known", gin.H{"word": "huis", "language": "Dutch"}).Code)
	app.audit.Wait()

	w := app.get("/api/audit")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Events      []entities.AuditEvent `json:"events"`
		TotalEvents int64                 `json:"total_events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.TotalEvents)

	w = app.get("/api/audit?type=upload")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.TotalEvents)
	assert.Equal(t, "document_upload", body.Events[0].Action)
}

func TestRouter_RendersTemplates(t *testing.T) {
	dir := t.TempDir()
	tmpl := `{{define "library"}}<p>{{.Total}} words for {{.Auth.Username}}</p>{{end}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "library.html"), []byte(tmpl), 0o644))

	app := newTestApp(t, testAppOptions{templatesPath: dir})
	require.Equal(t, http.StatusOK, app.postJSON("/api/vocabulary/meaning", gin.H{"word": "hus", "language": "Dutch", "meaning": "huis"}).Code)

	w := app.do(httptest.NewRequest("GET", "/library", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>1 words for local</p>", w.Body.String())
}

func TestRouter_ReadTemplateSeesHandledWords(t *testing.T) {
	dir := t.TempDir()
	tmpl := `{{define "read"}}{{range .Reading.Words}}{{if $.Reading.IsHandled .}}[{{.}}]{{else}}{{.}}{{end}} {{end}}{{end}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "read.html"), []byte(tmpl), 0o644))

	app := newTestApp(t, testAppOptions{templatesPath: dir})
	doc := app.upload(t, "Dutch", "Het huis staat in de tuin.")
	require.Equal(t, http.StatusOK, app.postJSON("/api/vocabulary/known", gin.H{"word": "huis", "language": "Dutch"}).Code)
	require.Equal(t, http.StatusOK, app.postJSON("/api/vocabulary/meaning", gin.H{"word": "tuin", "language": "Dutch", "meaning": "garden"}).Code)

	w := app.do(httptest.NewRequest("GET", "/read/"+doc.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "het [huis] staat in de [tuin] ", w.Body.String())
}

func TestDocumentsController_DeleteRequiresAdmin(t *testing.T) {
	app := newTestApp(t, testAppOptions{})
	doc := app.upload(t, "Dutch", "Het huis.")

	reader := &entities.User{ID: 2, Username: "reader", Role: entities.UserRoleReader}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyUser, reader)
		c.Set(auth.ContextKeyUserID, reader.ID)
		c.Next()
	})
	router.DELETE("/api/documents/:id", NewDocumentsController(app.documents, 0).Delete)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/documents/"+doc.ID, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err := app.documents.Get(doc.ID)
	assert.NoError(t, err)
}
