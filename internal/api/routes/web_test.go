package routes

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Yatube/internal/api/middleware"
	"Yatube/internal/cache"
	"Yatube/internal/core/feeds"
	"Yatube/internal/core/follows"
	"Yatube/internal/core/groups"
	"Yatube/internal/core/media"
	"Yatube/internal/core/posts"
	"Yatube/internal/core/users"
	"Yatube/internal/db/memory"
	"Yatube/internal/web"
)

// smallGIF is a valid 2x1 GIF
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

type testApp struct {
	store      *memory.Store
	router     http.Handler
	sessions   *middleware.SessionAuth
	indexCache *cache.PageCache
	users      users.UserService
	clock      time.Time
}

func newTestApp(t *testing.T, indexTTL time.Duration) *testApp {
	t.Helper()

	app := &testApp{
		store: memory.NewStore(),
		clock: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	app.store.SetClock(func() time.Time {
		app.clock = app.clock.Add(time.Second)
		return app.clock
	})

	templates, err := web.NewTemplates()
	require.NoError(t, err)

	backend, err := cache.NewLRUBackend(cache.DefaultLRUSize)
	require.NoError(t, err)
	app.indexCache = cache.NewPageCache(backend, nil)

	mediaStore := media.NewStore(t.TempDir())

	app.users = users.NewUserService(app.store.Users())
	groupService := groups.NewGroupService(app.store.Groups())
	followService := follows.NewFollowService(app.store.Follows(), app.users)
	postService := posts.NewPostService(app.store.Posts(), groupService, mediaStore)
	feedService := feeds.NewFeedService(app.store.Posts(), groupService, app.users, followService, feeds.DefaultPageSize)

	app.sessions = middleware.NewSessionAuth(
		middleware.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), false),
		app.users,
	)

	handlers := web.NewHandlers(web.Deps{
		Templates:      templates,
		Feeds:          feedService,
		Posts:          postService,
		Groups:         groupService,
		Follows:        followService,
		Users:          app.users,
		Sessions:       app.sessions,
		IndexCache:     app.indexCache,
		IndexTTL:       indexTTL,
		MaxUploadBytes: mediaStore.MaxUploadBytes(),
	})

	r := chi.NewRouter()
	RegisterWebRoutes(r, handlers, app.sessions, mediaStore.FileServer())
	app.router = r
	return app
}

func (a *testApp) user(t *testing.T, username string) *users.User {
	t.Helper()
	u, err := a.store.Users().Create(context.Background(), &users.User{Username: username, PasswordHash: "unused"})
	require.NoError(t, err)
	return u
}

func (a *testApp) group(t *testing.T, slug string) *groups.Group {
	t.Helper()
	g := &groups.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, a.store.Groups().Create(context.Background(), g))
	return g
}

func (a *testApp) post(t *testing.T, author *users.User, group *groups.Group, text string) *posts.Post {
	t.Helper()
	p := &posts.Post{AuthorID: author.ID, Text: text}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, a.store.Posts().Create(context.Background(), p))
	return p
}

// cookiesFor returns session cookies for user
func (a *testApp) cookiesFor(t *testing.T, user *users.User) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, a.sessions.LogIn(rec, httptest.NewRequest(http.MethodGet, "/", nil), user))
	return rec.Result().Cookies()
}

func (a *testApp) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return a.serve(httptest.NewRequest(http.MethodGet, path, nil), cookies)
}

func (a *testApp) postForm(path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.serve(req, cookies)
}

func (a *testApp) serve(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t, 0)
	leo := app.user(t, "leo")
	cats := app.group(t, "cats")
	p := app.post(t, leo, cats, "hello cats")

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{path: "/", status: http.StatusOK, body: "hello cats"},
		{path: "/group/cats/", status: http.StatusOK, body: "about cats"},
		{path: "/profile/leo/", status: http.StatusOK, body: "All posts by leo"},
		{path: fmt.Sprintf("/posts/%d/", p.ID), status: http.StatusOK, body: "posts by this author: 1"},
		{path: "/group/dogs/", status: http.StatusNotFound},
		{path: "/profile/ghost/", status: http.StatusNotFound},
		{path: "/posts/9999/", status: http.StatusNotFound},
		{path: "/posts/abc/", status: http.StatusNotFound},
		{path: "/unexisting_page/", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := app.get(tt.path, nil)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Contains(t, rec.Body.String(), tt.body)
			}
		})
	}
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	app := newTestApp(t, 0)
	leo := app.user(t, "leo")
	p := app.post(t, leo, nil, "text")

	paths := []string{
		"/create/",
		"/follow/",
		fmt.Sprintf("/posts/%d/edit/", p.ID),
		"/profile/leo/follow/",
		"/profile/leo/unfollow/",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := app.get(path, nil)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/auth/login/?next="+url.QueryEscape(path), rec.Header().Get("Location"))
		})
	}

	rec := app.postForm("/create/", url.Values{"text": {"sneaky"}}, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	n, err := app.store.Posts().Count(context.Background(), posts.AllPosts())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "anonymous create must not write")
}

func TestCreatePost(t *testing.T) {
	app := newTestApp(t, 0)
	leo := app.user(t, "leo")
	app.group(t, "cats")
	cookies := app.cookiesFor(t, leo)

	rec := app.get("/create/", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="cats"`)

	rec = app.postForm("/create/", url.Values{"text": {"fresh post"}, "group": {"cats"}}, cookies)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))

	for _, path := range []string{"/", "/group/cats/", "/profile/leo/"} {
		assert.Contains(t, app.get(path, nil).Body.String(), "fresh post", path)
	}
}

func TestCreatePost_Validation(t *testing.T) {
	app := newTestApp(t, 0)
	leo := app.user(t, "leo")
	cookies := app.cookiesFor(t, leo)

	rec := app.postForm("/create/", url.Values{"text": {"   "}}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "post text must not be empty")

	rec = app.postForm("/create/", url.Values{"text": {"hi"}, "group": {"nope"}}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "select a valid group")

	n, err := app.store.Posts().Count(context.Background(), posts.AllPosts())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreatePost_WithImage(t *testing.T) {
	app := newTestApp(t, 0)
	leo := app.user(t, "leo")
	cookies := app.cookiesFor(t, leo)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", "with picture"))
	part, err := mw.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	_, err = part.Write(smallGIF)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := app.serve(req, cookies)
	require.Equal(t, http.StatusFound, rec.Code)

	found, err := app.store.Posts().Find(context.Background(), posts.AllPosts(), 1, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.NotEmpty(t, found[0].Image)

	served := app.get("/media/"+found[0].Image, nil)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, smallGIF, served.Body.Bytes())

	assert.Contains(t, app.get(fmt.Sprintf("/posts/%d/", found[0].ID), nil).Body.String(), "/media/"+found[0].Image)
}

func TestEditPost(t *testing.T) {
	app := newTestApp(t, 0)
	leo := app.user(t, "leo")
	mia := app.user(t, "mia")
	p := app.post(t, leo, nil, "original")
	editPath := fmt.Sprintf("/posts/%d/edit/", p.ID)
	detailPath := fmt.Sprintf("/posts/%d/", p.ID)

	t.Run("author sees the form", func(t *testing.T) {
		rec := app.get(editPath, app.cookiesFor(t, leo))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "original")
	})

	t.Run("non-author is sent to the post", func(t *testing.T) {
		rec := app.get(editPath, app.cookiesFor(t, mia))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, detailPath, rec.Header().Get("Location"))
	})

	t.Run("non-author submit is denied", func(t *testing.T) {
		rec := app.postForm(editPath, url.Values{"text": {"hijacked"}}, app.cookiesFor(t, mia))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		stored, err := app.store.Posts().GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", stored.Text)
	})

	t.Run("author submit updates", func(t *testing.T) {
		rec := app.postForm(editPath, url.Values{"text": {"edited"}}, app.cookiesFor(t, leo))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, detailPath, rec.Header().Get("Location"))

		stored, err := app.store.Posts().GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", stored.Text)
		assert.Equal(t, leo.ID, stored.AuthorID)
	})

	t.Run("unknown post", func(t *testing.T) {
		rec := app.get("/posts/9999/edit/", app.cookiesFor(t, leo))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeletePost(t *testing.T) {
	app := newTestApp(t, 0)
	leo := app.user(t, "leo")
	mia := app.user(t, "mia")
	p := app.post(t, leo, nil, "short lived")
	deletePath := fmt.Sprintf("/posts/%d/delete/", p.ID)

	rec := app.postForm(deletePath, nil, app.cookiesFor(t, mia))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.postForm(deletePath, nil, app.cookiesFor(t, leo))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, app.get(fmt.Sprintf("/posts/%d/", p.ID), nil).Code)
}

func TestFollowFlow(t *testing.T) {
	app := newTestApp(t, 0)
	reader := app.user(t, "reader")
	leo := app.user(t, "leo")
	cookies := app.cookiesFor(t, reader)

	assert.NotContains(t, app.get("/follow/", cookies).Body.String(), "from leo")

	rec := app.get("/profile/leo/follow/", cookies)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))

	// following twice keeps a single edge
	app.postForm("/profile/leo/follow/", nil, cookies)
	followers, err := app.store.Follows().CountFollowers(context.Background(), leo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, followers)

	assert.Contains(t, app.get("/profile/leo/", cookies).Body.String(), "Unfollow")

	app.post(t, leo, nil, "from leo")
	assert.Contains(t, app.get("/follow/", cookies).Body.String(), "from leo")

	rec = app.postForm("/profile/leo/unfollow/", nil, cookies)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.NotContains(t, app.get("/follow/", cookies).Body.String(), "from leo")
}

func TestFollowSelfRejected(t *testing.T) {
	app := newTestApp(t, 0)
	leo := app.user(t, "leo")

	rec := app.get("/profile/leo/follow/", app.cookiesFor(t, leo))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "you cannot follow yourself")

	rec = app.get("/profile/ghost/follow/", app.cookiesFor(t, leo))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexPagination(t *testing.T) {
	app := newTestApp(t, 0)
	leo := app.user(t, "leo")
	for i := 0; i < 13; i++ {
		app.post(t, leo, nil, fmt.Sprintf("post number %d", i))
	}

	tests := []struct {
		query string
		cards int
	}{
		{query: "", cards: 10},
		{query: "?page=1", cards: 10},
		{query: "?page=2", cards: 3},
		{query: "?page=3", cards: 0},
		{query: "?page=abc", cards: 10},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := app.get("/"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.cards, strings.Count(rec.Body.String(), "<article>"))
		})
	}

	// newest first
	body := app.get("/", nil).Body.String()
	assert.Less(t, strings.Index(body, "post number 12"), strings.Index(body, "post number 11"))
}

func TestIndexCacheServesStalePage(t *testing.T) {
	app := newTestApp(t, time.Minute)
	leo := app.user(t, "leo")
	app.post(t, leo, nil, "older post")
	cached := app.post(t, leo, nil, "cached post")

	first := app.get("/", nil).Body.String()
	require.Contains(t, first, "cached post")

	require.NoError(t, app.store.Posts().Delete(context.Background(), cached.ID))

	second := app.get("/", nil).Body.String()
	assert.Contains(t, second, "cached post", "index stays stale until the entry expires")

	// other views are always fresh
	assert.NotContains(t, app.get("/profile/leo/", nil).Body.String(), "cached post")

	require.NoError(t, app.indexCache.Invalidate(context.Background(), web.IndexCacheKey(1)))

	third := app.get("/", nil).Body.String()
	assert.NotContains(t, third, "cached post")
	assert.Contains(t, third, "older post")
}

func TestIndexCacheSkipsPagesPastTheEnd(t *testing.T) {
	app := newTestApp(t, time.Minute)
	leo := app.user(t, "leo")
	app.post(t, leo, nil, "only post")

	rec := app.get("/?page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, strings.Count(rec.Body.String(), "<article>"))

	for i := 0; i < 10; i++ {
		app.post(t, leo, nil, fmt.Sprintf("later post %d", i))
	}

	// the empty page was not stored, so page 2 now exists
	rec = app.get("/?page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "<article>"))
	assert.Contains(t, rec.Body.String(), "only post")
}

func TestIndexCacheKeepsViewerNavigation(t *testing.T) {
	app := newTestApp(t, time.Minute)
	leo := app.user(t, "leo")

	anonymous := app.get("/", nil).Body.String()
	assert.Contains(t, anonymous, "Log in")

	signedIn := app.get("/", app.cookiesFor(t, leo)).Body.String()
	assert.Contains(t, signedIn, "/profile/leo/")
	assert.NotContains(t, signedIn, "Log in")
}

func TestSignupAndLogin(t *testing.T) {
	app := newTestApp(t, 0)

	rec := app.postForm("/auth/signup/", url.Values{
		"username":   {"newbie"},
		"password":   {"correct horse"},
		"first_name": {"New"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.NotEmpty(t, rec.Result().Cookies())

	rec = app.postForm("/auth/signup/", url.Values{"username": {"newbie"}, "password": {"correct horse"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")

	rec = app.postForm("/auth/login/", url.Values{"username": {"newbie"}, "password": {"wrong password"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.postForm("/auth/login/", url.Values{
		"username": {"newbie"},
		"password": {"correct horse"},
		"next":     {"/create/"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/create/", rec.Header().Get("Location"))

	create := app.get("/create/", rec.Result().Cookies())
	assert.Equal(t, http.StatusOK, create.Code)
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	app := newTestApp(t, 0)
	_, err := app.users.Register(context.Background(), users.RegisterRequest{Username: "leo", Password: "long enough"})
	require.NoError(t, err)

	rec := app.postForm("/auth/login/", url.Values{
		"username": {"leo"},
		"password": {"long enough"},
		"next":     {"//evil.example"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}
