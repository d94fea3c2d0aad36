package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Yatube/internal/api/middleware"
	"Yatube/internal/web"
)

// RegisterWebRoutes registers every Yatube page.
// Pages that need a signed-in viewer redirect anonymous viewers to the login page.
func RegisterWebRoutes(r chi.Router, handlers *web.Handlers, sessions *middleware.SessionAuth, media http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(sessions.LoadViewer)

		// Feeds
		r.Get("/", handlers.IndexHandler)
		r.Get("/group/{slug}/", handlers.GroupHandler)
		r.Get("/profile/{username}/", handlers.ProfileHandler)
		r.Get("/posts/{id}/", handlers.PostDetailHandler)

		// Authentication
		r.Get("/auth/login/", handlers.LoginPageHandler)
		r.Post("/auth/login/", handlers.LoginHandler)
		r.Get("/auth/signup/", handlers.SignupPageHandler)
		r.Post("/auth/signup/", handlers.SignupHandler)
		r.Post("/auth/logout/", handlers.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireViewer)

			r.Get("/follow/", handlers.FollowIndexHandler)

			r.Get("/create/", handlers.CreatePostPageHandler)
			r.Post("/create/", handlers.CreatePostHandler)
			r.Get("/posts/{id}/edit/", handlers.EditPostPageHandler)
			r.Post("/posts/{id}/edit/", handlers.EditPostHandler)
			r.Post("/posts/{id}/delete/", handlers.DeletePostHandler)

			// GET is kept for plain links
			r.Get("/profile/{username}/follow/", handlers.FollowHandler)
			r.Post("/profile/{username}/follow/", handlers.FollowHandler)
			r.Get("/profile/{username}/unfollow/", handlers.UnfollowHandler)
			r.Post("/profile/{username}/unfollow/", handlers.UnfollowHandler)
		})
	})

	// Uploaded images
	r.Handle("/media/*", http.StripPrefix("/media/", media))

	r.NotFound(sessions.LoadViewer(http.HandlerFunc(handlers.NotFoundHandler)).ServeHTTP)
	r.MethodNotAllowed(sessions.LoadViewer(http.HandlerFunc(handlers.MethodNotAllowedHandler)).ServeHTTP)
}
