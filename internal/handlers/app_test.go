package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Beerzinss/DatKomp/internal/cart"
	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/notify"
	"github.com/Beerzinss/DatKomp/internal/store"
	"github.com/Beerzinss/DatKomp/internal/store/storetest"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notify.OrderNotice
}

func (f *fakeNotifier) OrderPlaced(_ context.Context, n notify.OrderNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
	return nil
}

func (f *fakeNotifier) sent() []notify.OrderNotice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.OrderNotice(nil), f.notices...)
}

// testApp runs the full router (without CSRF) against a fresh sqlite store.
type testApp struct {
	t         *testing.T
	store     *store.Store
	server    *httptest.Server
	client    *http.Client
	notifier  *fakeNotifier
	uploadDir string
}

const testBaseURL = "http://shop.datkomp.test"

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	s := storetest.New(t)

	templates := NewTemplateCache()
	require.NoError(t, templates.Load("../../templates"))

	key := []byte("test-session-key-0123456789abcdef")
	sessionStore := sessions.NewCookieStore(key)
	// the test server speaks plain HTTP, so the cookies must not be Secure
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = false
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	cartStore, err := cart.NewStore(t.TempDir(), *sessionStore.Options, key)
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	uploadDir := t.TempDir()
	router := NewRouter(RouterConfig{
		Base:      Base{Store: s, SessionStore: sessionStore, CartStore: cartStore, Templates: templates},
		Notifier:  notifier,
		BaseURL:   testBaseURL,
		UploadDir: uploadDir,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	app := &testApp{t: t, store: s, server: server, notifier: notifier, uploadDir: uploadDir}
	app.client = app.newClient()
	return app
}

// newClient returns a client with its own cookie jar that does not follow redirects.
func (a *testApp) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) get(c *http.Client, path string) (*http.Response, string) {
	a.t.Helper()
	resp, err := c.Get(a.server.URL + path)
	require.NoError(a.t, err)
	return resp, readBody(a.t, resp)
}

func (a *testApp) post(c *http.Client, path string, form url.Values) (*http.Response, string) {
	a.t.Helper()
	resp, err := c.PostForm(a.server.URL+path, form)
	require.NoError(a.t, err)
	return resp, readBody(a.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func (a *testApp) login(c *http.Client, email, password string) {
	a.t.Helper()
	resp, _ := a.post(c, "/account/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(a.t, http.StatusSeeOther, resp.StatusCode, "login should redirect")
}

func (a *testApp) productByName(name string) models.Product {
	a.t.Helper()
	products, err := a.store.GetAllProducts(context.Background())
	require.NoError(a.t, err)
	for _, p := range products {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	a.t.Fatalf("product %q not found", name)
	return models.Product{}
}

func (a *testApp) addUser(email, password string, admin bool) *models.User {
	a.t.Helper()
	return storetest.AddUser(a.t, a.store, email, password, admin)
}
