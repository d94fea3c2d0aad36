package posts

import (
	"io"
	"strings"
	"time"

	"Yatube/internal/core/media"
)

// Post is the stored form of a post.
// AuthorID is set once on creation and never updated.
type Post struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	GroupID   *int64    `json:"groupId,omitempty" db:"group_id"`
	Text      string    `json:"text" db:"text"`
	Image     string    `json:"image,omitempty" db:"image"`
	ID        int64     `json:"id" db:"id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
}

// AuthorIdentity implements access.Authored
func (p *Post) AuthorIdentity() int64 {
	return p.AuthorID
}

// AuthorView is the author as shown next to a post
type AuthorView struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	ID        int64  `json:"id"`
}

// FullName returns "First Last", or the username when no name is set
func (a *AuthorView) FullName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Username
	}
	return name
}

// GroupRef is the minimal group info shown on a post
type GroupRef struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	ID    int64  `json:"id"`
}

// PostView is a post hydrated with its author and group for display
type PostView struct {
	CreatedAt time.Time   `json:"createdAt"`
	Author    *AuthorView `json:"author"`
	Group     *GroupRef   `json:"group,omitempty"`
	Text      string      `json:"text"`
	Image     string      `json:"image,omitempty"`
	ID        int64       `json:"id"`
}

// AuthorIdentity implements access.Authored
func (p *PostView) AuthorIdentity() int64 {
	if p.Author == nil {
		return 0
	}
	return p.Author.ID
}

// Thumbnail returns the stored path of the card-sized image, or "" without an image
func (p *PostView) Thumbnail() string {
	if p.Image == "" {
		return ""
	}
	return media.ThumbnailPath(p.Image)
}

// ImageUpload is an image submitted with a post form
type ImageUpload struct {
	Content  io.Reader
	Filename string
}

// CreatePostRequest represents input for creating a new post
type CreatePostRequest struct {
	Image     *ImageUpload
	Text      string
	GroupSlug string
}

// EditPostRequest carries the fields an author may change.
// A nil Image keeps the current image unless ClearImage is set.
type EditPostRequest struct {
	Image      *ImageUpload
	Text       string
	GroupSlug  string
	ClearImage bool
}
