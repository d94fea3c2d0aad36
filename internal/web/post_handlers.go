package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rivo/uniseg"

	"Yatube/internal/core/access"
	"Yatube/internal/core/groups"
	"Yatube/internal/core/posts"
)

const summaryLength = 30

type postDetailPage struct {
	basePage
	Post            *posts.PostView
	Summary         string
	AuthorPostCount int
	CanEdit         bool
}

// postForm is what the create and edit forms submit
type postForm struct {
	Text      string
	GroupSlug string
}

type postFormPage struct {
	basePage
	Errors       map[string]string
	Groups       []*groups.Group
	Form         postForm
	CurrentImage string
	PostID       int64
	IsEdit       bool
}

// PostDetailHandler handles GET /posts/{id}/
func (h *Handlers) PostDetailHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, err := h.posts.GetPost(ctx, pathID(chi.URLParam(r, "id")))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	count, err := h.posts.CountByAuthor(ctx, post.AuthorIdentity())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "post_detail.html", postDetailPage{
		basePage:        h.base(r),
		Post:            post,
		Summary:         summarize(post.Text),
		AuthorPostCount: count,
		CanEdit:         access.CanEdit(access.FromContext(ctx), post),
	})
}

// CreatePostPageHandler handles GET /create/
func (h *Handlers) CreatePostPageHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPostForm(w, r, http.StatusOK, postFormPage{})
}

// CreatePostHandler handles POST /create/ and redirects to the author's profile
func (h *Handlers) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := access.FromContext(ctx)

	form, upload, cleanup, err := h.parsePostForm(w, r)
	defer cleanup()
	if err != nil {
		h.renderPostForm(w, r, http.StatusBadRequest, postFormPage{Form: form, Errors: fieldErrors(err)})
		return
	}

	_, err = h.posts.CreatePost(ctx, viewer, posts.CreatePostRequest{
		Text:      form.Text,
		GroupSlug: form.GroupSlug,
		Image:     upload,
	})
	if err != nil {
		if posts.IsValidationError(err) {
			h.renderPostForm(w, r, http.StatusBadRequest, postFormPage{Form: form, Errors: fieldErrors(err)})
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", viewer.Username), http.StatusFound)
}

// EditPostPageHandler handles GET /posts/{id}/edit/.
// Viewers who are not the author are sent to the post page.
func (h *Handlers) EditPostPageHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := pathID(chi.URLParam(r, "id"))

	post, err := h.posts.GetPostForEdit(ctx, access.FromContext(ctx), id)
	if err != nil {
		if errors.Is(err, posts.ErrPermissionDenied) {
			http.Redirect(w, r, fmt.Sprintf("/posts/%d/", id), http.StatusFound)
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	data := postFormPage{
		IsEdit:       true,
		PostID:       post.ID,
		CurrentImage: post.Image,
		Form:         postForm{Text: post.Text},
	}
	if post.Group != nil {
		data.Form.GroupSlug = post.Group.Slug
	}
	h.renderPostForm(w, r, http.StatusOK, data)
}

// EditPostHandler handles POST /posts/{id}/edit/ and redirects to the post page
func (h *Handlers) EditPostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := pathID(chi.URLParam(r, "id"))

	form, upload, cleanup, err := h.parsePostForm(w, r)
	defer cleanup()
	if err != nil {
		h.renderPostForm(w, r, http.StatusBadRequest, postFormPage{IsEdit: true, PostID: id, Form: form, Errors: fieldErrors(err)})
		return
	}

	post, err := h.posts.EditPost(ctx, access.FromContext(ctx), id, posts.EditPostRequest{
		Text:       form.Text,
		GroupSlug:  form.GroupSlug,
		Image:      upload,
		ClearImage: r.FormValue("clear_image") != "",
	})
	if err != nil {
		if posts.IsValidationError(err) {
			h.renderPostForm(w, r, http.StatusBadRequest, postFormPage{IsEdit: true, PostID: id, Form: form, Errors: fieldErrors(err)})
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
}

// DeletePostHandler handles POST /posts/{id}/delete/
func (h *Handlers) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := access.FromContext(ctx)

	if err := h.posts.DeletePost(ctx, viewer, pathID(chi.URLParam(r, "id"))); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", viewer.Username), http.StatusFound)
}

func (h *Handlers) renderPostForm(w http.ResponseWriter, r *http.Request, status int, data postFormPage) {
	list, err := h.groups.ListGroups(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	data.basePage = h.base(r)
	data.Groups = list
	h.render(w, r, status, "create_post.html", data)
}

// parsePostForm reads text, group and the optional image.
// cleanup releases temporary files and must always be called.
func (h *Handlers) parsePostForm(w http.ResponseWriter, r *http.Request) (postForm, *posts.ImageUpload, func(), error) {
	cleanup := func() {}

	// room for the text fields on top of the image
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)

	err := r.ParseMultipartForm(h.maxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if r.MultipartForm != nil {
		cleanup = func() { _ = r.MultipartForm.RemoveAll() }
	}

	form := postForm{
		Text:      r.FormValue("text"),
		GroupSlug: r.FormValue("group"),
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return form, nil, cleanup, posts.NewValidationError("image", "the uploaded file is too large")
		}
		return form, nil, cleanup, posts.NewValidationError("form", "the form could not be read")
	}

	if r.MultipartForm == nil {
		return form, nil, cleanup, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil, cleanup, nil
	}
	if err != nil {
		return form, nil, cleanup, posts.NewValidationError("image", "the uploaded file could not be read")
	}

	previous := cleanup
	cleanup = func() {
		_ = file.Close()
		previous()
	}
	return form, newImageUpload(file, header), cleanup, nil
}

func newImageUpload(file multipart.File, header *multipart.FileHeader) *posts.ImageUpload {
	return &posts.ImageUpload{Content: file, Filename: header.Filename}
}

// fieldErrors turns a validation error into form field messages
func fieldErrors(err error) map[string]string {
	var ve *posts.ValidationError
	if errors.As(err, &ve) {
		return map[string]string{ve.Field: ve.Message}
	}
	return map[string]string{"form": err.Error()}
}

// summarize returns the first characters of text for the page title
func summarize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if uniseg.GraphemeClusterCount(text) <= summaryLength {
		return text
	}

	var b strings.Builder
	g := uniseg.NewGraphemes(text)
	for i := 0; i < summaryLength && g.Next(); i++ {
		b.WriteString(g.Str())
	}
	return b.String()
}
