package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Yatube/internal/core/access"
)

// FollowHandler handles /profile/{username}/follow/ and returns to the profile
func (h *Handlers) FollowHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.follows.Follow(r.Context(), access.FromContext(r.Context()), username); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", username), http.StatusFound)
}

// UnfollowHandler handles /profile/{username}/unfollow/ and returns to the profile
func (h *Handlers) UnfollowHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.follows.Unfollow(r.Context(), access.FromContext(r.Context()), username); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", username), http.StatusFound)
}
