package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/gorilla/sessions"

	"Yatube/internal/core/access"
	"Yatube/internal/core/users"
)

const (
	// LoginPath is where anonymous viewers are sent for protected pages
	LoginPath = "/auth/login/"

	sessionName   = "yatube_session"
	sessionUserID = "user_id"
)

// UserLoader resolves the user stored in a session
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*users.User, error)
}

// SessionAuth identifies viewers from a signed session cookie
type SessionAuth struct {
	store sessions.Store
	users UserLoader
}

// NewCookieStore creates the cookie-backed session store.
// secret signs the cookie; secure restricts it to HTTPS.
func NewCookieStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// NewSessionAuth creates the session middleware
func NewSessionAuth(store sessions.Store, userLoader UserLoader) *SessionAuth {
	return &SessionAuth{
		store: store,
		users: userLoader,
	}
}

// LoadViewer puts the request's viewer into the context.
// Requests without a valid session get the anonymous viewer.
func (m *SessionAuth) LoadViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := m.viewerFromSession(r)
		next.ServeHTTP(w, r.WithContext(access.WithViewer(r.Context(), viewer)))
	})
}

// RequireViewer redirects anonymous viewers to the login page.
// Must run after LoadViewer.
func (m *SessionAuth) RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !access.FromContext(r.Context()).IsAuthenticated() {
			RedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LogIn binds the session to user
func (m *SessionAuth) LogIn(w http.ResponseWriter, r *http.Request, user *users.User) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values[sessionUserID] = user.ID
	return session.Save(r, w)
}

// LogOut expires the session cookie
func (m *SessionAuth) LogOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	delete(session.Values, sessionUserID)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func (m *SessionAuth) viewerFromSession(r *http.Request) access.Viewer {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		// tampered or signed with an old secret
		slog.Debug("ignoring invalid session", "error", err, "path", r.URL.Path)
		return access.Anonymous()
	}

	id, ok := session.Values[sessionUserID].(int64)
	if !ok || id <= 0 {
		return access.Anonymous()
	}

	user, err := m.users.GetUserByID(r.Context(), id)
	if err != nil {
		if !users.IsNotFound(err) {
			slog.Error("failed to load session user", "error", err, "user_id", id)
		}
		return access.Anonymous()
	}
	return access.Identified(user.ID, user.Username)
}

// RedirectToLogin sends the viewer to the login page, returning to the current URL afterwards
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}

// SafeNext returns next when it is a local path, else fallback.
// Browsers drop tabs and newlines from URLs, so any control character is rejected.
func SafeNext(next, fallback string) string {
	if next == "" || next[0] != '/' || strings.ContainsFunc(next, unicode.IsControl) {
		return fallback
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
