package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jobportal-dev/job-portal/backend/internal/auth"
	"github.com/jobportal-dev/job-portal/backend/internal/config"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

const (
	testPassword   = "correct-horse-1"
	initialOwner   = "owner@portal.test"
	savedJobsLimit = 2
)

var testPasswordHash = sync.OnceValue(func() string {
	hash, err := auth.NewCredentials(12).Hash(testPassword)
	if err != nil {
		panic(err)
	}
	return hash
})

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Server.FrontendURL = "http://localhost:3000"
	cfg.Server.FrontendDir = t.TempDir()
	cfg.InitialOwner.Email = initialOwner
	cfg.Password.BcryptCost = 12
	cfg.Password.MinLength = 8
	cfg.NewUser.PasswordLength = 12
	cfg.OTP.Expiration = 1800
	cfg.Resume.MaxBytes = 200 * 1024
	cfg.SavedJobs.Limit = savedJobsLimit
	return cfg
}

type testEnv struct {
	srv      *httptest.Server
	cfg      *config.Config
	store    *memoryStore
	otp      *memoryOTP
	mail     *memoryMail
	blobs    *memoryBlobs
	sessions *auth.Sessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		cfg:   testConfig(t),
		store: newMemoryStore(),
		otp:   newMemoryOTP(),
		mail:  &memoryMail{},
		blobs: &memoryBlobs{objects: map[string][]byte{}},
	}
	env.sessions = auth.NewSessions(auth.SessionOptions{
		Secret:              []byte("handler-test-secret"),
		Lifetime:            24 * time.Hour,
		CookieName:          "__session",
		SelectionCookieName: "__role_selection",
		SelectionTTL:        5 * time.Minute,
		SelectionHashKey:    []byte("hash"),
		SelectionBlockKey:   []byte("block"),
	}, &memoryLedger{seen: map[string]bool{}}, nil)

	h, err := NewHandler(Deps{
		Config:   env.cfg,
		Store:    env.store,
		OTP:      env.otp,
		Mail:     env.mail,
		Blobs:    env.blobs,
		Sessions: env.sessions,
	})
	require.NoError(t, err)
	h.RegisterRoutes()

	env.srv = httptest.NewServer(h.Mux)
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) seedCandidate(t *testing.T, email string) *domain.Candidate {
	t.Helper()
	c := &domain.Candidate{Email: email, FirstName: "Asha", LastName: "Rao", PasswordHash: testPasswordHash()}
	require.NoError(t, e.store.CreateCandidate(context.Background(), c))
	return c
}

func (e *testEnv) seedHR(t *testing.T, email string, scope domain.Scope) *domain.HRAccount {
	t.Helper()
	hr := &domain.HRAccount{Email: email, FirstName: "Meera", LastName: "Iyer", PasswordHash: testPasswordHash(), Scope: scope, Designation: "Recruiter"}
	require.NoError(t, e.store.CreateHR(context.Background(), hr))
	return hr
}

func (e *testEnv) seedJob(t *testing.T, hrID string, status domain.JobStatus) *domain.Job {
	t.Helper()
	j := &domain.Job{HRID: hrID, Role: "Backend Engineer", Designation: "SDE II", Department: "Platform", Location: "Pune", Experience: "3-5 years", Status: status, Description: "Build the portal"}
	require.NoError(t, e.store.CreateJob(context.Background(), j))
	return j
}

type testClient struct {
	t    *testing.T
	env  *testEnv
	http *http.Client
}

func (e *testEnv) client(t *testing.T) *testClient {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:   t,
		env: e,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// signIn plants a session cookie for p as if a login had completed.
func (c *testClient) signIn(p *domain.Principal) {
	rec := httptest.NewRecorder()
	require.NoError(c.t, c.env.sessions.Issue(rec, p))
	c.absorb(rec)
}

func (c *testClient) signInUnresolved(email, name string, method domain.AuthMethod) {
	rec := httptest.NewRecorder()
	require.NoError(c.t, c.env.sessions.IssueUnresolved(rec, email, name, method))
	c.absorb(rec)
}

func (c *testClient) signInAs(record any) {
	switch v := record.(type) {
	case *domain.Candidate:
		c.signIn(&domain.Principal{Email: v.Email, Name: v.FullName(), Role: domain.RoleCandidate, IdentityID: v.ID, Method: domain.AuthMethodPassword})
	case *domain.HRAccount:
		c.signIn(&domain.Principal{Email: v.Email, Name: v.FullName(), Role: domain.RoleHR, IdentityID: v.ID, Method: domain.AuthMethodPassword})
	default:
		c.t.Fatalf("cannot sign in as %T", record)
	}
}

func (c *testClient) absorb(rec *httptest.ResponseRecorder) {
	u, err := url.Parse(c.env.srv.URL)
	require.NoError(c.t, err)
	c.http.Jar.SetCookies(u, rec.Result().Cookies())
}

type result struct {
	status int
	header http.Header
	body   Response
	raw    []byte
}

// data returns the response data as a JSON object.
func (r result) data() map[string]any {
	m, _ := r.body.Data.(map[string]any)
	return m
}

func (c *testClient) do(method, path string, body any) result {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, c.env.srv.URL+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *testClient) send(req *http.Request) result {
	c.t.Helper()

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	res := result{status: resp.StatusCode, header: resp.Header}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	res.raw = raw
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.Unmarshal(raw, &res.body), string(raw))
	}
	return res
}
