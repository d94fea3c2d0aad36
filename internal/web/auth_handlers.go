package web

import (
	"errors"
	"log/slog"
	"net/http"

	"Yatube/internal/api/middleware"
	"Yatube/internal/core/users"
)

type loginPage struct {
	basePage
	Next     string
	Username string
	Error    string
}

type signupPage struct {
	basePage
	Errors map[string]string
	Form   users.RegisterRequest
}

// LoginPageHandler handles GET /auth/login/
func (h *Handlers) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", loginPage{
		basePage: h.base(r),
		Next:     middleware.SafeNext(r.URL.Query().Get("next"), "/"),
	})
}

// LoginHandler handles POST /auth/login/
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	username := r.PostForm.Get("username")
	next := middleware.SafeNext(r.PostForm.Get("next"), "/")

	user, err := h.users.Authenticate(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		if !errors.Is(err, users.ErrInvalidCredentials) {
			slog.Error("login failed", "username", username, "error", err)
		}
		h.render(w, r, http.StatusUnauthorized, "login.html", loginPage{
			basePage: h.base(r),
			Next:     next,
			Username: username,
			Error:    "Wrong username or password.",
		})
		return
	}

	if err := h.sessions.LogIn(w, r, user); err != nil {
		slog.Error("failed to save session", "user_id", user.ID, "error", err)
		h.renderError(w, r, http.StatusInternalServerError, "Could not log you in. Try again later.")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, next, http.StatusFound)
}

// SignupPageHandler handles GET /auth/signup/
func (h *Handlers) SignupPageHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup.html", signupPage{basePage: h.base(r)})
}

// SignupHandler handles POST /auth/signup/, logging the new user in
func (h *Handlers) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	req := users.RegisterRequest{
		Username:  r.PostForm.Get("username"),
		Password:  r.PostForm.Get("password"),
		FirstName: r.PostForm.Get("first_name"),
		LastName:  r.PostForm.Get("last_name"),
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		var ve *users.ValidationError
		switch {
		case errors.As(err, &ve):
			h.renderSignupError(w, r, req, ve.Field, ve.Message)
		case errors.Is(err, users.ErrUsernameTaken):
			h.renderSignupError(w, r, req, "username", "A user with that username already exists.")
		default:
			slog.Error("signup failed", "username", req.Username, "error", err)
			h.renderError(w, r, http.StatusInternalServerError, "Could not create the account. Try again later.")
		}
		return
	}

	if err := h.sessions.LogIn(w, r, user); err != nil {
		slog.Error("failed to save session", "user_id", user.ID, "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// LogoutHandler handles POST /auth/logout/
func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.LogOut(w, r); err != nil {
		slog.Warn("failed to clear session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handlers) renderSignupError(w http.ResponseWriter, r *http.Request, req users.RegisterRequest, field, message string) {
	req.Password = ""
	h.render(w, r, http.StatusBadRequest, "signup.html", signupPage{
		basePage: h.base(r),
		Form:     req,
		Errors:   map[string]string{field: message},
	})
}
