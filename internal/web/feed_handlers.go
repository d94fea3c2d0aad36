package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Yatube/internal/cache"
	"Yatube/internal/core/access"
	"Yatube/internal/core/feeds"
	"Yatube/internal/core/follows"
	"Yatube/internal/core/groups"
	"Yatube/internal/core/users"
)

// IndexCacheKey is the cache key of one page of the global index
func IndexCacheKey(page int) string {
	return fmt.Sprintf("index:page:%d", page)
}

type indexPage struct {
	basePage
	PostList template.HTML
}

type groupPage struct {
	basePage
	Group *groups.Group
	Page  *feeds.Page
}

type profilePage struct {
	basePage
	Author    *users.User
	Page      *feeds.Page
	Stats     *follows.Stats
	CanFollow bool
	Following bool
}

type followPage struct {
	basePage
	Page *feeds.Page
}

// IndexHandler handles GET / and serves the post list from the page cache.
// The cached fragment excludes the navigation, so it is shared by every viewer.
func (h *Handlers) IndexHandler(w http.ResponseWriter, r *http.Request) {
	number := pageNumber(r)

	fragment, err := h.indexCache.GetOrRender(r.Context(), IndexCacheKey(number), h.indexTTL, func(ctx context.Context) ([]byte, error) {
		resp, err := h.feeds.ListPosts(ctx, feeds.ListPostsRequest{View: feeds.ViewGlobal, Page: number})
		if err != nil {
			return nil, err
		}
		fragment, err := h.templates.RenderFragment("post_list", resp.Page)
		if err == nil && number > 1 && !resp.Page.InRange() {
			// pages past the end are served but not stored
			return fragment, cache.ErrNoStore
		}
		return fragment, err
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "index.html", indexPage{
		basePage: h.base(r),
		// rendered by html/template, so already escaped
		PostList: template.HTML(fragment),
	})
}

// GroupHandler handles GET /group/{slug}/
func (h *Handlers) GroupHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := h.feeds.ListPosts(r.Context(), feeds.ListPostsRequest{
		View:     feeds.ViewGroup,
		Selector: chi.URLParam(r, "slug"),
		Page:     pageNumber(r),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "group_list.html", groupPage{
		basePage: h.base(r),
		Group:    resp.Group,
		Page:     resp.Page,
	})
}

// ProfileHandler handles GET /profile/{username}/
func (h *Handlers) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := access.FromContext(ctx)

	resp, err := h.feeds.ListPosts(ctx, feeds.ListPostsRequest{
		View:     feeds.ViewProfile,
		Selector: chi.URLParam(r, "username"),
		Page:     pageNumber(r),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	stats, err := h.follows.GetStats(ctx, resp.Author.ID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	data := profilePage{
		basePage:  h.base(r),
		Author:    resp.Author,
		Page:      resp.Page,
		Stats:     stats,
		CanFollow: viewer.IsAuthenticated() && viewer.UserID != resp.Author.ID,
	}
	if data.CanFollow {
		data.Following, err = h.follows.IsFollowing(ctx, viewer.UserID, resp.Author.ID)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
	}

	h.render(w, r, http.StatusOK, "profile.html", data)
}

// FollowIndexHandler handles GET /follow/
func (h *Handlers) FollowIndexHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := h.feeds.ListPosts(r.Context(), feeds.ListPostsRequest{
		View:   feeds.ViewFollow,
		Viewer: access.FromContext(r.Context()),
		Page:   pageNumber(r),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "follow.html", followPage{
		basePage: h.base(r),
		Page:     resp.Page,
	})
}
