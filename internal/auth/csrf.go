package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

const (
	// CSRFFormField is the form field gorilla/csrf reads the token from.
	CSRFFormField = "gorilla.csrf.Token"
	// CSRFTokenHeader carries the token on HTMX and fetch requests.
	CSRFTokenHeader = "X-CSRF-Token"

	contextKeyCSRFToken = "csrf_token"

	csrfExpiredMessage = "Session expired. Please try again."
)

// CSRFMiddleware protects unsafe methods with gorilla/csrf. Requests with a
// valid bearer token are API clients and skip the check; a nil
// authService disables that shortcut.
func CSRFMiddleware(secret []byte, secure bool, authService *Service) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.FieldName(CSRFFormField),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if isAPIWithValidBearer(c, authService) {
			c.Next()
			return
		}

		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			c.Set(contextKeyCSRFToken, csrf.Token(r))
			// The session middleware runs later and layers its context on top
			c.Request = r
			c.Next()
		})

		req := c.Request
		if !secure && req.TLS == nil {
			// Otherwise gorilla/csrf assumes TLS and demands a Referer
			req = csrf.PlaintextHTTPRequest(req)
		}
		protect(next).ServeHTTP(c.Writer, req)
	}
}

// csrfErrorHandler answers a failed token check. Browsers go back to the
// page they came from with an error message; API clients get JSON.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}`))
		return
	}

	if back, ok := refererWithError(r.Referer()); ok {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	http.Error(w, csrfExpiredMessage, http.StatusForbidden)
}

// refererWithError turns a Referer into a local path carrying the expiry
// message. Only the path and query are kept so the redirect stays on site.
func refererWithError(referer string) (string, bool) {
	if referer == "" {
		return "", false
	}
	u, err := url.Parse(referer)
	if err != nil || u.Path == "" {
		return "", false
	}
	q := u.Query()
	q.Set("error", csrfExpiredMessage)
	back := sanitizeRedirectPath(u.Path) + "?" + q.Encode()
	return back, true
}

func isAPIWithValidBearer(c *gin.Context, authService *Service) bool {
	if authService == nil {
		return false
	}
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return false
	}
	_, err := authService.ValidateToken(token)
	return err == nil
}

// GetCSRFToken returns the token for the current request's forms.
func GetCSRFToken(c *gin.Context) string {
	token, _ := contextValue[string](c, contextKeyCSRFToken)
	return token
}
