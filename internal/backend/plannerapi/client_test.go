package plannerapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"plannercheck/internal/api"
	"plannercheck/internal/backend/plannerapi"
	"plannercheck/internal/config"
	"plannercheck/internal/resource"
	"plannercheck/internal/testutil"
)

var creds = api.Credentials{Email: "tester@example.com", Password: "pw", Name: "Test User"}

func newClient(t *testing.T, baseURL string) *plannerapi.Client {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.Settings.APIURL = baseURL
	cfg.Settings.RequestTimeout = 2 * time.Second
	return plannerapi.New(cfg)
}

func mustKind(t *testing.T, name string) resource.Kind {
	t.Helper()
	k, err := resource.Lookup(name)
	require.NoError(t, err)
	return k
}

func TestSignIn_ReturnsSession(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	fake.AddAccount(creds.Email, creds.Password)

	sess, err := newClient(t, fake.BaseURL()).SignIn(context.Background(), creds)

	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "user-tester@example.com", sess.UserID)
	assert.Equal(t, creds.Email, sess.Email)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "POST /users/signin", reqs[0].Key())
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Empty(t, reqs[0].Header.Get("Authorization"))
	assert.Equal(t, creds.Email, reqs[0].Body["email"])
}

func TestSignIn_UnknownAccount(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()

	_, err := newClient(t, fake.BaseURL()).SignIn(context.Background(), creds)

	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	var gerr *googleapi.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, http.StatusUnauthorized, gerr.Code)
	assert.Contains(t, gerr.Body, "Invalid email or password")
}

func TestSignIn_NoToken(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	fake.AddAccount(creds.Email, creds.Password)
	fake.OmitToken = true

	_, err := newClient(t, fake.BaseURL()).SignIn(context.Background(), creds)

	assert.ErrorIs(t, err, api.ErrNoToken)
}

func TestSignIn_RejectsCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"token":"t-1"}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).SignIn(context.Background(), creds)

	require.Error(t, err)
	var gerr *googleapi.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, http.StatusCreated, gerr.Code)
}

func TestSignUp(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	client := newClient(t, fake.BaseURL())

	require.NoError(t, client.SignUp(context.Background(), creds))

	err := client.SignUp(context.Background(), creds)
	var gerr *googleapi.Error
	require.True(t, errors.As(err, &gerr), "second sign-up conflicts")
	assert.Equal(t, http.StatusConflict, gerr.Code)

	assert.Equal(t, "Test User", fake.Requests()[0].Body["name"])
}

func TestCreate_SendsAuthHeadersAndReturnsID(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	fake.AddAccount(creds.Email, creds.Password)
	client := newClient(t, fake.BaseURL())
	ctx := context.Background()

	sess, err := client.SignIn(ctx, creds)
	require.NoError(t, err)

	vision := mustKind(t, "vision")
	id, err := client.Create(ctx, sess, vision, vision.Payload(resource.Env{Now: time.Now()}))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	reqs := fake.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, "POST /visions", last.Key())
	assert.Equal(t, "Bearer "+sess.Token, last.Header.Get("Authorization"))
	assert.Equal(t, creds.Email, last.Header.Get(plannerapi.UserHeader))
	assert.Equal(t, "application/json", last.Header.Get("Content-Type"))
	assert.Equal(t, "Vision-1: Life 2025", last.Body["title"])
}

func TestCreate_EnvelopeID(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	fake.AddAccount(creds.Email, creds.Password)
	fake.Envelope["/health"] = true
	client := newClient(t, fake.BaseURL())
	ctx := context.Background()

	sess, err := client.SignIn(ctx, creds)
	require.NoError(t, err)

	id, err := client.Create(ctx, sess, mustKind(t, "health"), resource.Payload{"steps": 1})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestCreate_ServerErrorCarriesBody(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	fake.AddAccount(creds.Email, creds.Password)
	fake.Status["POST /health"] = http.StatusInternalServerError
	client := newClient(t, fake.BaseURL())
	ctx := context.Background()

	sess, err := client.SignIn(ctx, creds)
	require.NoError(t, err)

	_, err = client.Create(ctx, sess, mustKind(t, "health"), resource.Payload{})
	require.Error(t, err)
	assert.Equal(t, `HTTP 500: {"error":"injected failure"}`, api.Describe(err))
}

func TestCreate_InvalidTokenIsUnauthorized(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()

	_, err := newClient(t, fake.BaseURL()).Create(context.Background(),
		api.Session{Token: "forged", Email: creds.Email}, mustKind(t, "goal"), resource.Payload{})

	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestList_CountsArrayAndEnvelope(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	fake.AddAccount(creds.Email, creds.Password)
	fake.Seed("/goals", map[string]any{"_id": "g1", "title": "Existing"})
	fake.Seed("/todos", map[string]any{"_id": "t1"})
	fake.Seed("/todos", map[string]any{"_id": "t2"})
	fake.Envelope["/todos"] = true
	client := newClient(t, fake.BaseURL())
	ctx := context.Background()

	sess, err := client.SignIn(ctx, creds)
	require.NoError(t, err)

	goals, err := client.List(ctx, sess, mustKind(t, "goal"))
	require.NoError(t, err)
	assert.Len(t, goals, 1)
	assert.Equal(t, "Existing", goals[0]["title"])

	todos, err := client.List(ctx, sess, mustKind(t, "todo"))
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	visions, err := client.List(ctx, sess, mustKind(t, "vision"))
	require.NoError(t, err)
	assert.Empty(t, visions)
}

func TestStatusNoContentIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newClient(t, srv.URL).SignUp(context.Background(), creds)

	var gerr *googleapi.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, http.StatusNoContent, gerr.Code)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.Settings.APIURL = srv.URL
	cfg.Settings.RequestTimeout = 50 * time.Millisecond

	err = plannerapi.New(cfg).SignUp(context.Background(), creds)

	assert.ErrorIs(t, err, api.ErrTimeout)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url).SignIn(context.Background(), creds)

	require.Error(t, err)
	assert.False(t, strings.HasPrefix(api.Describe(err), "HTTP "))
}
