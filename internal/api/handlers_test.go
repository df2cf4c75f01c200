package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/sevennews/internal/auth"
	"github.com/bilgisen/sevennews/internal/blob"
	"github.com/bilgisen/sevennews/internal/cache"
	"github.com/bilgisen/sevennews/internal/config"
	"github.com/bilgisen/sevennews/internal/feed"
	"github.com/bilgisen/sevennews/internal/metrics"
	"github.com/bilgisen/sevennews/internal/models"
	"github.com/bilgisen/sevennews/internal/repository"
	"github.com/bilgisen/sevennews/internal/storage"
)

type fakeAuth struct{}

func (fakeAuth) SignIn(ctx context.Context, email, password string) (*auth.Identity, error) {
	if email == "admin@7news.example" && password == "secret" {
		return &auth.Identity{UID: "uid-1", Email: email, IDToken: "tok"}, nil
	}
	if email == "down@7news.example" {
		return nil, errors.New("dial tcp: connection refused")
	}
	return nil, auth.ErrInvalidCredentials
}

type testEnv struct {
	app      *fiber.App
	store    storage.Store
	repo     *repository.Repository
	sessions *cache.Memory
	cfg      *config.Config
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.FromEnv()
	cfg.DefaultLanguage = "en"
	cfg.DefaultTheme = "light"
	cfg.SessionCookie = "sevennews_session"
	cfg.SessionTTL = time.Hour
	cfg.SubmitTimeout = 5 * time.Second
	cfg.MaxFileSize = 1 << 20
	cfg.FeedCacheTTL = 0
	cfg.LoginRate = 100
	cfg.LoginBurst = 100
	cfg.StoreBackend = config.StoreFile
	return cfg
}

func newTestEnvWith(t *testing.T, cfg *config.Config, store storage.Store) *testEnv {
	t.Helper()
	uploads := t.TempDir()
	blobs, err := blob.NewLocal(uploads, "http://localhost:8080/uploads")
	require.NoError(t, err)

	repo := repository.New(store, blobs)
	sessions := cache.NewMemory()
	d := Deps{
		Config:    cfg,
		Repo:      repo,
		Snapshot:  feed.NewSnapshot(repo, cfg.FeedCacheTTL),
		Sessions:  sessions,
		Auth:      fakeAuth{},
		Metrics:   metrics.New(),
		UploadDir: uploads,
	}
	app := NewApp(cfg)
	SetupRoutes(app, NewHandlers(d), d)
	return &testEnv{app: app, store: store, repo: repo, sessions: sessions, cfg: cfg}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return newTestEnvWith(t, testConfig(t), store)
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, string(body)
}

func (e *testEnv) seed(t *testing.T, items ...models.NewsItem) []string {
	t.Helper()
	ids := make([]string, len(items))
	for i, it := range items {
		id, err := e.store.Insert(context.Background(), it)
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func (e *testEnv) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := e.sessions.Create(context.Background(), cache.Session{UID: "uid-1"}, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: e.cfg.SessionCookie, Value: token}
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestGetNewsOrdered(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t,
		models.NewsItem{TitleEN: "old", Category: "World", CreatedAt: 100},
		models.NewsItem{TitleEN: "new", Category: "World", CreatedAt: 300, VideoURL: "https://v"},
		models.NewsItem{TitleEN: "mid", Category: "World", CreatedAt: 200},
	)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/news", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.NewsItem
	require.NoError(t, json.Unmarshal([]byte(body), &items))
	require.Len(t, items, 3)
	require.Equal(t, []string{"new", "mid", "old"}, []string{items[0].TitleEN, items[1].TitleEN, items[2].TitleEN})
	require.Contains(t, body, `"videoUrl":"https://v"`)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/news?limit=1", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &items))
	require.Len(t, items, 1)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/news?limit=abc", nil))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetNewsEmpty(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/news", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `[]`, body)
}

type brokenStore struct{ storage.Store }

func (brokenStore) List(context.Context, int) ([]models.NewsItem, error) {
	return nil, errors.New("permission denied")
}
func (brokenStore) Get(context.Context, string) (*models.NewsItem, error) {
	return nil, errors.New("permission denied")
}
func (brokenStore) Ping(context.Context) error { return errors.New("permission denied") }

func TestGetNewsStoreFailure(t *testing.T) {
	env := newTestEnvWith(t, testConfig(t), brokenStore{})

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/news", nil))
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	require.Equal(t, "Failed to fetch news", payload["error"])
	require.Contains(t, payload["details"], "permission denied")

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Contains(t, body, "Could not load news")
}

func TestGetNewsByID(t *testing.T) {
	env := newTestEnv(t)
	ids := env.seed(t, models.NewsItem{TitleEN: "one", Category: "World", CreatedAt: 1})

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/news/"+ids[0], nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"title_en":"one"`)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/news/missing", nil))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.JSONEq(t, `{"error":"News not found"}`, body)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"status":"ok"`)

	_, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/news", nil))
	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "go_goroutines")
}

func TestUnknownAPIRoute(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, body, "Endpoint not found")
}

func TestHomeRendersInLanguage(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t,
		models.NewsItem{TitleEN: "Climate Summit", TitleTA: "காலநிலை உச்சிமாநாடு", Category: "World", CreatedAt: 300},
		models.NewsItem{TitleEN: "English Only", Category: "Sports", CreatedAt: 200, VideoURL: "https://v/1.mp4"},
	)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Climate Summit")
	require.Contains(t, body, "Latest News")
	require.Contains(t, body, `src="https://v/1.mp4"`)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/?lang=ta", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "காலநிலை உச்சிமாநாடு")
	require.Contains(t, body, "English Only", "missing Tamil title falls back to English")
	require.NotContains(t, body, "Climate Summit")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "ta"})
	_, body = env.do(t, req)
	require.Contains(t, body, "சமீபத்திய செய்திகள்")
}

func TestVideosPage(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t,
		models.NewsItem{TitleEN: "Plain Story", Category: "World", CreatedAt: 2},
		models.NewsItem{TitleEN: "Launch Video", Category: "World", CreatedAt: 1, VideoURL: "https://v/launch.mp4"},
	)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/videos", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Launch Video")
	require.NotContains(t, body, "Plain Story")
}

func TestNewsDetail(t *testing.T) {
	env := newTestEnv(t)
	var items []models.NewsItem
	for i := 1; i <= 8; i++ {
		items = append(items, models.NewsItem{
			TitleEN:   "Story " + string(rune('A'+i-1)),
			Category:  "World",
			CreatedAt: int64(i),
		})
	}
	ids := env.seed(t, items...)

	// Story H is the newest; related shows the next five newest.
	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/news/"+ids[7], nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "<h1>Story H</h1>")
	require.Contains(t, body, "Related News")
	for _, title := range []string{"Story G", "Story F", "Story E", "Story D", "Story C"} {
		require.Contains(t, body, title)
	}
	require.NotContains(t, body, "Story B")

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/news/missing", nil))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, body, "News Not Found")
}

func TestPreferenceToggles(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/prefs/language?back=/news/x%3Flang%3Den", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/news/x", resp.Header.Get("Location"))
	require.Contains(t, resp.Header.Get("Set-Cookie"), "lang=ta")

	req := httptest.NewRequest(http.MethodGet, "/prefs/language?back=//evil.example", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "ta"})
	resp, _ = env.do(t, req)
	require.Equal(t, "/", resp.Header.Get("Location"))
	require.Contains(t, resp.Header.Get("Set-Cookie"), "lang=en")

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/prefs/theme?to=dark", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Set-Cookie"), "theme=dark")
}

func TestToggleLinksFollowQueryOverride(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/?lang=ta&theme=dark", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "en"})
	req.AddCookie(&http.Cookie{Name: "theme", Value: "light"})
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `href="/prefs/language?to=en&back=%2f%3flang%3dta%26theme%3ddark"`)
	require.Contains(t, body, `href="/prefs/theme?to=light&back=`)

	req = httptest.NewRequest(http.MethodGet, "/prefs/language?to=en&back="+url.QueryEscape("/?lang=ta"), nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "en"})
	resp, _ = env.do(t, req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	require.Contains(t, resp.Header.Get("Set-Cookie"), "lang=en")

	req = httptest.NewRequest(http.MethodGet, "/prefs/theme?to=light&back="+url.QueryEscape("/videos?theme=dark"), nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "light"})
	resp, _ = env.do(t, req)
	require.Equal(t, "/videos", resp.Header.Get("Location"))
	require.Contains(t, resp.Header.Get("Set-Cookie"), "theme=light")
}

func TestAdminRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/admin", "/admin/news/new", "/admin/news/x/edit", "/admin/news/x/delete"} {
		resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		require.Equal(t, "/admin/login", resp.Header.Get("Location"), path)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: env.cfg.SessionCookie, Value: "stale"})
	resp, _ := env.do(t, req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = env.do(t, formRequest(http.MethodPost, "/admin/news", url.Values{"title_en": {"x"}}))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	items, err := env.store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `name="password"`)

	resp, body = env.do(t, formRequest(http.MethodPost, "/admin/login", url.Values{
		"email": {"admin@7news.example"}, "password": {"wrong"},
	}))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, "Invalid email or password.")

	resp, _ = env.do(t, formRequest(http.MethodPost, "/admin/login", url.Values{
		"email": {"not-an-email"}, "password": {"x"},
	}))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = env.do(t, formRequest(http.MethodPost, "/admin/login", url.Values{
		"email": {"down@7news.example"}, "password": {"x"},
	}))
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp, _ = env.do(t, formRequest(http.MethodPost, "/admin/login", url.Values{
		"email": {"admin@7news.example"}, "password": {"secret"},
	}))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))

	var session *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == env.cfg.SessionCookie {
			session = ck
		}
	}
	require.NotNil(t, session)
	require.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	resp, body = env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Dashboard")
	require.Contains(t, body, "Logout")

	req = httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	resp, _ = env.do(t, req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, err := env.sessions.Lookup(context.Background(), session.Value)
	require.ErrorIs(t, err, cache.ErrSessionNotFound)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	env := newTestEnv(t)
	mine := env.sessionCookie(t)
	other := env.sessionCookie(t)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodPost, "/admin/logout-all", nil))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/login", resp.Header.Get("Location"))
	_, err := env.sessions.Lookup(context.Background(), other.Value)
	require.NoError(t, err, "signing out everywhere needs a session")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(mine)
	_, body := env.do(t, req)
	require.Contains(t, body, `action="/admin/logout-all"`)

	req = httptest.NewRequest(http.MethodPost, "/admin/logout-all", nil)
	req.AddCookie(mine)
	resp, _ = env.do(t, req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/login", resp.Header.Get("Location"))
	require.Contains(t, resp.Header.Get("Set-Cookie"), env.cfg.SessionCookie+"=;")

	for _, ck := range []*http.Cookie{mine, other} {
		_, err := env.sessions.Lookup(context.Background(), ck.Value)
		require.ErrorIs(t, err, cache.ErrSessionNotFound)
	}
}

func TestLoginRateLimited(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	cfg := testConfig(t)
	cfg.LoginRate = 0.001
	cfg.LoginBurst = 1
	env := newTestEnvWith(t, cfg, store)

	creds := url.Values{"email": {"admin@7news.example"}, "password": {"wrong"}}
	resp, _ := env.do(t, formRequest(http.MethodPost, "/admin/login", creds))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, formRequest(http.MethodPost, "/admin/login", creds))
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Contains(t, body, "Too many sign-in attempts")
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	env := newTestEnv(t)

	req := formRequest(http.MethodPost, "/admin/news", url.Values{
		"title_en": {""}, "title_ta": {"தலைப்பு"}, "category": {"World"},
	})
	req.AddCookie(env.sessionCookie(t))
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body, "is required")
	require.Contains(t, body, `value="தலைப்பு"`)
	require.Contains(t, body, `data-state="editing"`)
	require.Contains(t, body, "Please correct the highlighted fields.")

	items, err := env.store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, items)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, filename string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
		h.Set("Content-Type", "image/png")
		fw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestCreateWithImageThenEditAndDelete(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t)

	req := multipartRequest(t, "/admin/news", map[string]string{
		"title_en":       "Festival",
		"title_ta":       "திருவிழா",
		"description_en": "Crowds\nMusic",
		"category":       "Culture",
	}, "fest photo.png", []byte("\x89PNG fake"))
	req.AddCookie(cookie)
	resp, _ := env.do(t, req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin?done=created", resp.Header.Get("Location"))

	items, err := env.store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	created := items[0]
	require.Equal(t, "Festival", created.TitleEN)
	require.Equal(t, "Culture", created.Category)
	require.True(t, strings.HasPrefix(created.ImageURL, "http://localhost:8080/uploads/news/"), created.ImageURL)
	require.True(t, strings.HasSuffix(created.ImageURL, "_fest_photo.png"), created.ImageURL)
	require.NotZero(t, created.CreatedAt)

	// The uploaded file is served under /uploads.
	key := strings.TrimPrefix(created.ImageURL, "http://localhost:8080")
	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, key, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "\x89PNG fake", body)

	// Edit keeps the image and creation time.
	req = httptest.NewRequest(http.MethodGet, "/admin/news/"+created.ID+"/edit", nil)
	req.AddCookie(cookie)
	resp, body = env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `value="Festival"`)

	req = multipartRequest(t, "/admin/news/"+created.ID, map[string]string{
		"title_en": "Festival",
		"title_ta": "திருவிழா",
		"category": "Sports",
	}, "", nil)
	req.AddCookie(cookie)
	resp, _ = env.do(t, req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	got, err := env.store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Sports", got.Category)
	require.Equal(t, created.CreatedAt, got.CreatedAt)
	require.Equal(t, created.ImageURL, got.ImageURL)
	require.Empty(t, got.DescriptionEN)

	// Dashboard lists it.
	req = httptest.NewRequest(http.MethodGet, "/admin?done=updated", nil)
	req.AddCookie(cookie)
	_, body = env.do(t, req)
	require.Contains(t, body, "News item updated.")
	require.Contains(t, body, "/admin/news/"+created.ID+"/edit")

	// Delete needs the confirmation page first, then a POST.
	req = httptest.NewRequest(http.MethodGet, "/admin/news/"+created.ID+"/delete", nil)
	req.AddCookie(cookie)
	resp, body = env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Are you sure")
	_, err = env.store.Get(context.Background(), created.ID)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/admin/news/"+created.ID+"/delete", nil)
	req.AddCookie(cookie)
	resp, _ = env.do(t, req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, err = env.store.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/news/"+created.ID, nil))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateRejectsOversizedImage(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	cfg := testConfig(t)
	cfg.MaxFileSize = 8
	env := newTestEnvWith(t, cfg, store)

	req := multipartRequest(t, "/admin/news", map[string]string{"title_en": "Big"}, "big.png", bytes.Repeat([]byte("x"), 64))
	req.AddCookie(env.sessionCookie(t))
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body, "must be at most 8 bytes")

	items, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestEditUnknownItem(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t)

	for _, path := range []string{"/admin/news/missing/edit", "/admin/news/missing/delete"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		resp, _ := env.do(t, req)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	req := formRequest(http.MethodPost, "/admin/news/missing", url.Values{"title_en": {"x"}})
	req.AddCookie(cookie)
	resp, _ := env.do(t, req)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSafeBack(t *testing.T) {
	tests := map[string]string{
		"":                      "/",
		"/":                     "/",
		"/news/1":               "/news/1",
		"/videos?lang=ta":       "/videos",
		"/?theme=dark&x=1":      "/?x=1",
		"//evil.example/path":   "/",
		"https://evil.example/": "/",
		`/\evil.example`:        "/",
	}
	for in, want := range tests {
		require.Equal(t, want, safeBack(in), in)
	}
}
