package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"Yatube/internal/api/middleware"
	"Yatube/internal/cache"
	"Yatube/internal/core/access"
	"Yatube/internal/core/feeds"
	"Yatube/internal/core/follows"
	"Yatube/internal/core/groups"
	"Yatube/internal/core/posts"
	"Yatube/internal/core/users"
)

// Deps are the collaborators the page handlers need
type Deps struct {
	Templates  *Templates
	Feeds      feeds.Service
	Posts      posts.Service
	Groups     groups.Service
	Follows    follows.Service
	Users      users.UserService
	Sessions   *middleware.SessionAuth
	IndexCache *cache.PageCache
	// IndexTTL is how long a rendered index page may be served stale; 0 disables caching
	IndexTTL time.Duration
	// MaxUploadBytes bounds multipart post forms
	MaxUploadBytes int64
}

// Handlers provides HTTP handlers for the Yatube pages.
type Handlers struct {
	templates      *Templates
	feeds          feeds.Service
	posts          posts.Service
	groups         groups.Service
	follows        follows.Service
	users          users.UserService
	sessions       *middleware.SessionAuth
	indexCache     *cache.PageCache
	indexTTL       time.Duration
	maxUploadBytes int64
}

// NewHandlers creates a new Handlers instance with the provided dependencies.
func NewHandlers(deps Deps) *Handlers {
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}
	return &Handlers{
		templates:      deps.Templates,
		feeds:          deps.Feeds,
		posts:          deps.Posts,
		groups:         deps.Groups,
		follows:        deps.Follows,
		users:          deps.Users,
		sessions:       deps.Sessions,
		indexCache:     deps.IndexCache,
		indexTTL:       deps.IndexTTL,
		maxUploadBytes: maxUpload,
	}
}

// basePage is embedded by every page's data; layout.html reads it
type basePage struct {
	Viewer access.Viewer
}

func (h *Handlers) base(r *http.Request) basePage {
	return basePage{Viewer: access.FromContext(r.Context())}
}

// errorPage holds data for error.html
type errorPage struct {
	basePage
	Message string
	Status  int
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	if err := h.templates.Render(w, status, name, data); err != nil {
		slog.Error("failed to render page", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "error.html", errorPage{
		basePage: h.base(r),
		Status:   status,
		Message:  message,
	})
}

// NotFoundHandler renders the 404 page for unknown paths
func (h *Handlers) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found.")
}

// MethodNotAllowedHandler renders the 405 page
func (h *Handlers) MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusMethodNotAllowed, "Method not allowed.")
}

// handleServiceError maps core errors to pages
func (h *Handlers) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isUnauthorized(err):
		middleware.RedirectToLogin(w, r)
	case isNotFound(err):
		h.renderError(w, r, http.StatusNotFound, "Page not found.")
	case errors.Is(err, posts.ErrPermissionDenied):
		h.renderError(w, r, http.StatusForbidden, "You do not have permission to do that.")
	case posts.IsValidationError(err), follows.IsValidationError(err), feeds.IsValidationError(err):
		h.renderError(w, r, http.StatusBadRequest, validationMessage(err))
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Try again later.")
	}
}

func isUnauthorized(err error) bool {
	return errors.Is(err, posts.ErrUnauthorized) ||
		errors.Is(err, follows.ErrUnauthorized) ||
		errors.Is(err, feeds.ErrUnauthorized)
}

func isNotFound(err error) bool {
	return posts.IsNotFound(err) ||
		follows.IsNotFound(err) ||
		feeds.IsNotFound(err) ||
		users.IsNotFound(err) ||
		groups.IsNotFound(err)
}

func validationMessage(err error) string {
	var postErr *posts.ValidationError
	if errors.As(err, &postErr) {
		return postErr.Message
	}
	var followErr *follows.ValidationError
	if errors.As(err, &followErr) {
		return followErr.Message
	}
	var feedErr *feeds.ValidationError
	if errors.As(err, &feedErr) {
		return feedErr.Message
	}
	return err.Error()
}

// pageNumber reads ?page=. Missing, malformed or non-positive values mean page 1.
func pageNumber(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// pathID parses a numeric path segment; 0 means invalid
func pathID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
