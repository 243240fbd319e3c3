package auth

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/entities"
)

// sanitizeRedirectPath keeps post-login redirects on this site. Anything
// that is not a plain local path becomes "/".
func sanitizeRedirectPath(path string) string {
	switch {
	case !strings.HasPrefix(path, "/"),
		strings.HasPrefix(path, "//"),
		strings.Contains(path, "://"),
		strings.Contains(path, `\`):
		return "/"
	}
	return path
}

// Recorder receives login, logout and sign-up outcomes for the audit log.
type Recorder interface {
	LogAuth(userID uint, action string, ipAddr string, success bool)
}

// accountForm is the body of the login, setup and register forms.
type accountForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Confirm  string `form:"confirm_password"`
	Next     string `form:"next"`
}

// AuthController serves the login, setup and register pages.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	templates      *template.Template
	config         config.Auth
	rateLimiter    *RateLimiter
	recorder       Recorder

	// accounts serializes account creation so two first-run requests
	// cannot both become the admin.
	accounts sync.Mutex
}

// NewAuthController parses templates/auth/*.html when present; without
// them every page answers with its data as JSON. recorder may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, templatesPath string, cfg config.Auth, recorder Recorder) (*AuthController, error) {
	tmpl, err := template.ParseGlob(filepath.Join(templatesPath, "auth", "*.html"))
	if err != nil {
		tmpl = nil
	}

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		templates:      tmpl,
		config:         cfg,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
		recorder: recorder,
	}, nil
}

func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/logout", ac.Logout)
	router.GET("/setup", ac.SetupPage)
	router.POST("/setup", ac.Setup)
	router.GET("/register", ac.RegisterPage)
	router.POST("/register", ac.Register)
}

// Stop releases the rate limiter.
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

func (ac *AuthController) record(c *gin.Context, userID uint, action string, success bool) {
	if ac.recorder != nil {
		ac.recorder.LogAuth(userID, action, c.ClientIP(), success)
	}
}

// render executes an auth template, or answers with its data as JSON when
// the template is missing.
func (ac *AuthController) render(c *gin.Context, status int, name, title string, form accountForm, errMsg string) {
	data := gin.H{
		"Title":     title,
		"Username":  form.Username,
		"Email":     form.Email,
		"Next":      sanitizeRedirectPath(form.Next),
		"CSRFToken": GetCSRFToken(c),
		"Error":     errMsg,
		"Register":  ac.config.AllowRegistration,
	}

	if ac.templates == nil || ac.templates.Lookup(name) == nil {
		c.JSON(status, data)
		return
	}
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := ac.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		log.Printf("Failed to render %s: %v", name, err)
	}
}

func (ac *AuthController) bind(c *gin.Context) accountForm {
	var form accountForm
	// Missing fields are reported by account validation.
	_ = c.ShouldBind(&form)
	return form
}

// signIn starts a session and sends the user on.
func (ac *AuthController) signIn(c *gin.Context, user *entities.User, action, next string) error {
	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			return err
		}
	}
	ac.record(c, user.ID, action, true)
	c.Redirect(http.StatusFound, sanitizeRedirectPath(next))
	return nil
}

// LoginPage renders the login form, or sends a fresh install to /setup.
// GET /login
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessionManager != nil && ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if hasUsers, _ := ac.service.HasUsers(); !hasUsers {
		c.Redirect(http.StatusFound, "/setup")
		return
	}
	ac.render(c, http.StatusOK, "login.html", "Login", accountForm{Next: c.Query("next")}, c.Query("error"))
}

// Login checks credentials and starts a session.
// POST /login
func (ac *AuthController) Login(c *gin.Context) {
	form := ac.bind(c)
	ip := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(ip, form.Username); !allowed {
		c.Header("Retry-After", strconv.Itoa(int((retryAfter+time.Second-1)/time.Second)))
		ac.render(c, http.StatusTooManyRequests, "login.html", "Login", form, "Too many login attempts. Please try again later.")
		return
	}

	user, err := ac.service.Authenticate(form.Username, form.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(ip, form.Username)
		ac.record(c, 0, "login", false)

		msg := "Invalid username or password"
		if errors.Is(err, ErrAccountLocked) {
			msg = "Account is locked. Please try again later."
		}
		ac.render(c, http.StatusUnauthorized, "login.html", "Login", form, msg)
		return
	}
	ac.rateLimiter.RecordSuccess(ip, form.Username)

	if err := ac.signIn(c, user, "login", form.Next); err != nil {
		log.Printf("Failed to create session for %s: %v", user.Username, err)
		ac.render(c, http.StatusInternalServerError, "login.html", "Login", form, "Failed to create session")
	}
}

// Logout ends the session.
// GET|POST /logout
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		if userID := ac.sessionManager.GetUserID(c.Request); userID != anonymousUserID {
			ac.record(c, userID, "logout", true)
		}
		if err := ac.sessionManager.DestroySession(c.Request); err != nil {
			log.Printf("Failed to destroy session: %v", err)
		}
	}
	c.Redirect(http.StatusFound, "/login")
}

// SetupPage shows the first-run admin form until an account exists.
// GET /setup
func (ac *AuthController) SetupPage(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers()
	switch {
	case err != nil:
		ac.render(c, http.StatusInternalServerError, "setup.html", "Initial Setup", accountForm{}, "Database error. Please try again.")
	case hasUsers:
		c.Redirect(http.StatusFound, "/login")
	default:
		ac.render(c, http.StatusOK, "setup.html", "Initial Setup", accountForm{}, c.Query("error"))
	}
}

// Setup creates the first admin account.
// POST /setup
func (ac *AuthController) Setup(c *gin.Context) {
	form := ac.bind(c)

	ac.accounts.Lock()
	defer ac.accounts.Unlock()

	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		ac.render(c, http.StatusInternalServerError, "setup.html", "Initial Setup", form, "Database error. Please try again.")
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if form.Password != form.Confirm {
		ac.render(c, http.StatusBadRequest, "setup.html", "Initial Setup", form, "Passwords do not match")
		return
	}

	user, err := ac.service.CreateUser(form.Username, form.Email, form.Password, entities.UserRoleAdmin)
	if err != nil {
		ac.render(c, http.StatusBadRequest, "setup.html", "Initial Setup", form, userErrorMessage(err))
		return
	}
	ac.finishSignUp(c, user, "setup")
}

// RegisterPage shows the sign-up form while registration is open.
// GET /register
func (ac *AuthController) RegisterPage(c *gin.Context) {
	if hasUsers, err := ac.service.HasUsers(); err == nil && !hasUsers {
		c.Redirect(http.StatusFound, "/setup")
		return
	}
	if !ac.config.AllowRegistration {
		c.Redirect(http.StatusFound, "/login?error="+url.QueryEscape("Registration is closed"))
		return
	}
	ac.render(c, http.StatusOK, "register.html", "Create an account", accountForm{}, c.Query("error"))
}

// Register creates a reader account, or the admin on a fresh install.
// POST /register
func (ac *AuthController) Register(c *gin.Context) {
	form := ac.bind(c)
	if form.Password != form.Confirm {
		ac.render(c, http.StatusBadRequest, "register.html", "Create an account", form, "Passwords do not match")
		return
	}

	ac.accounts.Lock()
	user, err := ac.service.Register(form.Username, form.Email, form.Password)
	ac.accounts.Unlock()
	if err != nil {
		ac.record(c, 0, "register", false)
		status := http.StatusBadRequest
		if errors.Is(err, ErrRegistrationClosed) {
			status = http.StatusForbidden
		}
		ac.render(c, status, "register.html", "Create an account", form, userErrorMessage(err))
		return
	}
	ac.finishSignUp(c, user, "register")
}

// finishSignUp signs a new account in. The account exists even when the
// session cannot be created, so that case falls back to the login page.
func (ac *AuthController) finishSignUp(c *gin.Context, user *entities.User, action string) {
	if err := ac.signIn(c, user, action, "/"); err != nil {
		log.Printf("Failed to create session for %s: %v", user.Username, err)
		c.Redirect(http.StatusFound, "/login")
	}
}

// userErrorMessage turns account creation errors into form feedback.
func userErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordTooLong),
		errors.Is(err, ErrUsernameInvalid):
		msg := err.Error()
		return strings.ToUpper(msg[:1]) + msg[1:]
	case errors.Is(err, ErrUsernameRequired):
		return "Username is required"
	case errors.Is(err, ErrEmailRequired):
		return "Email is required"
	case errors.Is(err, ErrPasswordRequired):
		return "Password is required"
	case errors.Is(err, ErrEmailInvalid):
		return "Invalid email format"
	case errors.Is(err, ErrUserExists):
		return "That username or email is already taken"
	case errors.Is(err, ErrRegistrationClosed):
		return "Registration is closed"
	default:
		return "Failed to create user"
	}
}

// APITokenController issues bearer tokens over JSON.
type APITokenController struct {
	service *Service
}

func NewAPITokenController(service *Service) *APITokenController {
	return &APITokenController{service: service}
}

// GenerateToken replaces the caller's API token.
// POST /api/auth/token
func (tc *APITokenController) GenerateToken(c *gin.Context) {
	if !IsAuthenticated(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}

	token, err := tc.service.GenerateToken(GetUserID(c))
	if err != nil {
		log.Printf("Failed to generate API token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Send it as 'Authorization: Bearer <token>'. It will not be shown again.",
	})
}

// RevokeToken clears the caller's API token.
// DELETE /api/auth/token
func (tc *APITokenController) RevokeToken(c *gin.Context) {
	if !IsAuthenticated(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}
	if err := tc.service.RevokeToken(GetUserID(c)); err != nil {
		log.Printf("Failed to revoke API token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
