// Package access decides what the current viewer may do.
// A Viewer is passed explicitly into every service call that depends on who is asking.
package access

import "context"

// Viewer identifies who is making a request.
// The zero value is the anonymous viewer.
type Viewer struct {
	Username string
	UserID   int64
}

// Anonymous returns the viewer for requests without a session.
func Anonymous() Viewer {
	return Viewer{}
}

// Identified returns the viewer for a logged-in user.
func Identified(userID int64, username string) Viewer {
	return Viewer{UserID: userID, Username: username}
}

// IsAuthenticated reports whether the viewer is a known user.
func (v Viewer) IsAuthenticated() bool {
	return v.UserID > 0
}

// Authored is implemented by content that has a fixed author.
type Authored interface {
	AuthorIdentity() int64
}

// CanCreate reports whether the viewer may write new posts.
func CanCreate(v Viewer) bool {
	return v.IsAuthenticated()
}

// CanEdit reports whether the viewer may modify the given content.
// Only the author may edit; the anonymous viewer never can.
func CanEdit(v Viewer, content Authored) bool {
	if !v.IsAuthenticated() || content == nil {
		return false
	}
	return v.UserID == content.AuthorIdentity()
}

type contextKey string

const viewerKey contextKey = "viewer"

// WithViewer stores the viewer in the request context.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

// FromContext returns the viewer stored by WithViewer, or Anonymous.
func FromContext(ctx context.Context) Viewer {
	v, ok := ctx.Value(viewerKey).(Viewer)
	if !ok {
		return Anonymous()
	}
	return v
}
