package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/controller"
	"github.com/jonathan/resume-analyzer/internal/fetch"
	"github.com/jonathan/resume-analyzer/internal/persistence"
	"github.com/jonathan/resume-analyzer/internal/server/ratelimit"
	"github.com/jonathan/resume-analyzer/internal/session"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "correct-horse"
	testToken    = "good-token"
)

var testUserID = uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000001")

// fakeAI scripts the model client.
type fakeAI struct {
	result    types.AnalysisResult
	speech    []byte
	speechErr error
	question  string
}

func (f *fakeAI) ExtractResume(_ context.Context, raw string) types.ResumeData {
	return types.ResumeData{Name: "Ada Lovelace", Summary: raw, Skills: []string{"Go"}}
}

func (f *fakeAI) ScoreResume(context.Context, types.ResumeData, string, string) (types.AnalysisResult, error) {
	return f.result, nil
}

func (f *fakeAI) GenerateInterviewQuestion(_ context.Context, jobTitle, _ string) string {
	if f.question != "" {
		return f.question
	}
	return "Why " + jobTitle + "?"
}

func (f *fakeAI) SynthesizeSpeech(context.Context, string) ([]byte, error) {
	return f.speech, f.speechErr
}

// fakeBackend accepts one account and one access token.
type fakeBackend struct{}

func (fakeBackend) session() *types.Session {
	return &types.Session{UserID: testUserID, Email: testEmail, FullName: "Ada Lovelace", AccessToken: testToken}
}

func (b fakeBackend) SignUp(_ context.Context, _, email, _ string) (*types.Session, error) {
	if email == testEmail {
		return nil, session.NewAuthError(session.KindDuplicateAccount, nil)
	}
	return b.session(), nil
}

func (b fakeBackend) SignIn(_ context.Context, email, password string) (*types.Session, error) {
	if email != testEmail || password != testPassword {
		return nil, session.NewAuthError(session.KindInvalidCredentials, nil)
	}
	return b.session(), nil
}

func (fakeBackend) SignOut(context.Context, *types.Session) error { return nil }

func (fakeBackend) RequestPasswordReset(context.Context, string, string) error { return nil }

func (b fakeBackend) VerifyRecovery(_ context.Context, token string) (*types.Session, error) {
	if token != "recovery-token" {
		return nil, session.NewAuthError(session.KindExpiredResetLink, nil)
	}
	return b.session(), nil
}

func (fakeBackend) UpdatePassword(context.Context, *types.Session, string) error { return nil }

func (b fakeBackend) VerifyToken(_ context.Context, token string) (*types.Session, error) {
	if token != testToken {
		return nil, session.NewAuthError(session.KindNotSignedIn, nil)
	}
	return b.session(), nil
}

// fakeStore is an in-memory persistence.Client.
type fakeStore struct {
	mu       sync.Mutex
	records  []types.HistoryRecord
	contacts []string
}

func (f *fakeStore) SaveAnalysis(_ context.Context, _ *types.Session, rec *types.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = uuid.New()
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeStore) ListAnalyses(_ context.Context, s *types.Session) ([]types.HistoryRecord, error) {
	if s == nil {
		return nil, persistence.ErrAccessDenied
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.HistoryRecord(nil), f.records...), nil
}

func (f *fakeStore) SaveContactMessage(_ context.Context, name, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, name)
	return nil
}

// recordingArchive keeps the keys it was asked to store.
type recordingArchive struct {
	mu   sync.Mutex
	keys []string
}

func (a *recordingArchive) Put(_ context.Context, key, _ string, _ []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	return nil
}

type stubPages struct {
	page *fetch.Page
	err  error
}

func (s stubPages) Page(context.Context, string) (*fetch.Page, error) {
	return s.page, s.err
}

type testServer struct {
	*Server
	ai      *fakeAI
	store   *fakeStore
	archive *recordingArchive
}

func newTestServer(t *testing.T, opts ...func(*Config, *Deps)) *testServer {
	t.Helper()

	ts := &testServer{
		ai:      &fakeAI{result: types.AnalysisResult{ATSScore: 82, MissingKeywords: []string{"Kubernetes"}}},
		store:   &fakeStore{},
		archive: &recordingArchive{},
	}
	cfg := Config{
		ResetURL:   "http://localhost/recover",
		Controller: controller.Options{AnalysisTimeout: 5 * time.Second, ProgressHints: []time.Duration{}},
		RateLimit:  &ratelimit.Config{Enabled: false},
	}
	deps := Deps{
		AI:          ts.ai,
		Backend:     fakeBackend{},
		Persistence: ts.store,
		Pages: stubPages{page: &fetch.Page{
			URL:      "https://boards.greenhouse.io/acme/jobs/1",
			Platform: fetch.PlatformGreenhouse,
			Title:    "Staff Engineer",
			Text:     "Build distributed systems in Go.",
		}},
		Archive: ts.archive,
		Logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	ts.Server = New(cfg, deps)
	t.Cleanup(ts.close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func (ts *testServer) createWorkspace(t *testing.T, headers ...string) *Workspace {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/workspaces", nil, headers...)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp workspaceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	ws, err := ts.registry.Get(resp.ID)
	require.NoError(t, err)
	return ws
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) controller.Snapshot {
	t.Helper()
	var snap controller.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func fillDraft(t *testing.T, ts *testServer, ws *Workspace) {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPut, "/workspaces/"+ws.ID.String()+"/draft", map[string]string{
		"resume_text":     "Ada Lovelace\nEngineer",
		"job_title":       "Backend Engineer",
		"job_description": "Go and Kubernetes",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCORSMiddleware_OPTIONS(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodOptions, "/workspaces", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestWorkspaceLifecycle(t *testing.T) {
	ts := newTestServer(t)

	ws := ts.createWorkspace(t)
	path := "/workspaces/" + ws.ID.String()

	w := ts.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.StateIdle, decodeSnapshot(t, w).State)

	w = ts.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	select {
	case <-ws.Done():
	default:
		t.Fatal("workspace not closed after delete")
	}

	w = ts.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkspaceNotFound(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"malformed id", "/workspaces/not-a-uuid"},
		{"unknown id", "/workspaces/" + uuid.NewString()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, tt.path, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Contains(t, w.Body.String(), "workspace not found")
		})
	}
}

func TestCreateWorkspace_RestoresBearerSession(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name     string
		token    string
		signedIn bool
	}{
		{"valid token", testToken, true},
		{"invalid token", "stale", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := ts.createWorkspace(t, "Authorization", "Bearer "+tt.token)
			snap := ws.Controller.Snapshot()
			if tt.signedIn {
				require.NotNil(t, snap.User)
				assert.Equal(t, "Ada Lovelace", snap.User.Name)
			} else {
				assert.Nil(t, snap.User)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	t.Run("outside the upload view is a conflict", func(t *testing.T) {
		ts := newTestServer(t)
		ws := ts.createWorkspace(t)
		w := ts.do(t, http.MethodPut, "/workspaces/"+ws.ID.String()+"/draft", map[string]string{
			"resume_text":     "Ada Lovelace\nEngineer",
			"job_title":       "Backend Engineer",
			"job_description": "Go and Kubernetes",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/analyze", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, types.StateIdle, ws.Controller.State())
	})

	t.Run("blank draft is rejected", func(t *testing.T) {
		ts := newTestServer(t)
		ws := ts.createWorkspace(t)
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/start", nil).Code)

		w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/analyze", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, controller.ErrorValidation, ws.Controller.Snapshot().ErrorKind)
	})

	t.Run("complete draft reaches Result", func(t *testing.T) {
		ts := newTestServer(t)
		ws := ts.createWorkspace(t)
		fillDraft(t, ts, ws)

		w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/analyze", nil)
		require.Equal(t, http.StatusAccepted, w.Code)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		snap, err := ws.Controller.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, types.StateResult, snap.State)
		require.NotNil(t, snap.AnalysisResult)
		assert.Equal(t, 82, snap.AnalysisResult.ATSScore)
	})
}

func TestNavigate(t *testing.T) {
	ts := newTestServer(t)
	ws := ts.createWorkspace(t)
	path := "/workspaces/" + ws.ID.String() + "/navigate"

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantState  types.AppState
	}{
		{"unknown target", "dashboard", http.StatusBadRequest, types.StateIdle},
		{"result without a result", "result", http.StatusOK, types.StateIdle},
		{"uploading", "uploading", http.StatusOK, types.StateUploading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, path, map[string]string{"target": tt.target})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantState, ws.Controller.State())
		})
	}
}

func TestHistory_RequiresSignIn(t *testing.T) {
	ts := newTestServer(t)
	ws := ts.createWorkspace(t)

	w := ts.do(t, http.MethodGet, "/workspaces/"+ws.ID.String()+"/history", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), persistence.AccessDeniedMessage)
	assert.Equal(t, controller.ErrorAccess, ws.Controller.Snapshot().ErrorKind)
}

func TestHistory_SelectEntry(t *testing.T) {
	ts := newTestServer(t)
	rec := types.HistoryRecord{
		ID:             uuid.New(),
		UserID:         testUserID,
		JobTitle:       "Data Engineer",
		JobDescription: "Spark",
		ResumeData:     types.ResumeData{Name: "Ada Lovelace"},
		AnalysisResult: types.AnalysisResult{ATSScore: 71},
	}
	ts.store.records = []types.HistoryRecord{rec}

	ws := ts.createWorkspace(t, "Authorization", "Bearer "+testToken)
	base := "/workspaces/" + ws.ID.String()

	w := ts.do(t, http.MethodGet, base+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Data Engineer")
	assert.Equal(t, types.StateHistory, ws.Controller.State())

	w = ts.do(t, http.MethodPost, base+"/history/"+uuid.NewString()+"/select", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, base+"/history/"+rec.ID.String()+"/select", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeSnapshot(t, w)
	assert.Equal(t, types.StateResult, snap.State)
	assert.Equal(t, "Data Engineer", snap.Draft.JobTitle)
	require.NotNil(t, snap.AnalysisResult)
	assert.Equal(t, 71, snap.AnalysisResult.ATSScore)
}

func TestSignIn(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantBanner bool
	}{
		{"invalid email", map[string]string{"email": "nope", "password": "x"}, http.StatusBadRequest, false},
		{"wrong password", map[string]string{"email": testEmail, "password": "wrong"}, http.StatusUnauthorized, true},
		{"success", map[string]string{"email": testEmail, "password": testPassword}, http.StatusOK, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ws := ts.createWorkspace(t)

			w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/auth/signin", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			snap := ws.Controller.Snapshot()
			if tt.wantBanner {
				assert.Equal(t, controller.ErrorAuth, snap.ErrorKind)
				assert.Equal(t, "Invalid login credentials", snap.Error)
			}
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, snap.User)
				assert.Contains(t, w.Body.String(), testToken)
			}
		})
	}
}

func TestSignUp_DuplicateAccount(t *testing.T) {
	ts := newTestServer(t)
	ws := ts.createWorkspace(t)

	w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/auth/signup", map[string]string{
		"full_name": "Ada Lovelace",
		"email":     testEmail,
		"password":  testPassword,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "User already registered")
}

func TestSignOut_ResetsWorkspace(t *testing.T) {
	ts := newTestServer(t)
	ws := ts.createWorkspace(t, "Authorization", "Bearer "+testToken)
	fillDraft(t, ts, ws)

	w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/auth/signout", nil)

	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeSnapshot(t, w)
	assert.Nil(t, snap.User)
	assert.Equal(t, types.StateIdle, snap.State)
	assert.Empty(t, snap.Draft.JobTitle)
}

func TestPasswordRecovery(t *testing.T) {
	ts := newTestServer(t)
	ws := ts.createWorkspace(t)
	base := "/workspaces/" + ws.ID.String() + "/auth"

	w := ts.do(t, http.MethodPost, base+"/password", map[string]string{"password": "new-password"})
	assert.Equal(t, http.StatusGone, w.Code)

	w = ts.do(t, http.MethodPost, base+"/recover", map[string]string{"token": "recovery-token"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeSnapshot(t, w).RecoveryMode)

	w = ts.do(t, http.MethodPost, base+"/password", map[string]string{"password": "new-password"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeSnapshot(t, w).RecoveryMode)
}

func TestSubmitResume_JSON(t *testing.T) {
	ts := newTestServer(t)
	ws := ts.createWorkspace(t)

	w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/resume", map[string]string{"text": "Ada Lovelace"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada Lovelace", decodeSnapshot(t, w).Draft.ResumeText)
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSubmitResume_Upload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		content     string
		wantStatus  int
		wantArchive bool
	}{
		{"text file", "resume.txt", "Ada Lovelace\nAnalytical Engine", http.StatusOK, true},
		{"unsupported format", "resume.png", "not text", http.StatusUnsupportedMediaType, false},
		{"empty file", "resume.txt", "   ", http.StatusUnprocessableEntity, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ws := ts.createWorkspace(t)

			req := uploadRequest(t, "/workspaces/"+ws.ID.String()+"/resume", tt.filename, tt.content)
			w := httptest.NewRecorder()
			ts.Handler().ServeHTTP(w, req)
			ts.background.Wait()

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantArchive {
				assert.Contains(t, ws.Controller.Snapshot().Draft.ResumeText, "Analytical Engine")
				require.Len(t, ts.archive.keys, 1)
				assert.True(t, strings.HasPrefix(ts.archive.keys[0], "resumes/"))
				assert.True(t, strings.HasSuffix(ts.archive.keys[0], ".txt"))
			} else {
				assert.Empty(t, ts.archive.keys)
			}
		})
	}
}

func TestImportJobPosting(t *testing.T) {
	t.Run("fills title and description", func(t *testing.T) {
		ts := newTestServer(t)
		ws := ts.createWorkspace(t)

		w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/job-posting", map[string]string{
			"url": "https://boards.greenhouse.io/acme/jobs/1",
		})

		require.Equal(t, http.StatusOK, w.Code)
		draft := ws.Controller.Snapshot().Draft
		assert.Equal(t, "Staff Engineer", draft.JobTitle)
		assert.Equal(t, "Build distributed systems in Go.", draft.JobDescription)
		assert.Contains(t, w.Body.String(), `"platform":"greenhouse"`)
	})

	t.Run("upstream failure", func(t *testing.T) {
		ts := newTestServer(t, func(_ *Config, d *Deps) {
			d.Pages = stubPages{err: &fetch.Error{URL: "https://example.com", Message: "HTTP status 404"}}
		})
		ws := ts.createWorkspace(t)

		w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/job-posting", map[string]string{
			"url": "https://example.com",
		})

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Empty(t, ws.Controller.Snapshot().Draft.JobDescription)
	})

	t.Run("invalid url", func(t *testing.T) {
		ts := newTestServer(t)
		ws := ts.createWorkspace(t)

		w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/job-posting", map[string]string{"url": "nope"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSpeech(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		speechErr  error
		busy       bool
		wantStatus int
	}{
		{"text is synthesized", map[string]string{"text": "Hello there"}, nil, false, http.StatusOK},
		{"no text and no result", nil, nil, false, http.StatusBadRequest},
		{"synthesis failure is silent", map[string]string{"text": "Hello"}, errors.New("quota"), false, http.StatusNoContent},
		{"concurrent request", map[string]string{"text": "Hello"}, nil, true, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.ai.speech = []byte{0x01, 0x00, 0x02, 0x00}
			ts.ai.speechErr = tt.speechErr
			ws := ts.createWorkspace(t)
			ws.speechBusy.Store(tt.busy)

			w := ts.do(t, http.MethodPost, "/workspaces/"+ws.ID.String()+"/speech", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
				assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("RIFF")))
				assert.False(t, ws.speechBusy.Load())
			}
			if tt.wantStatus == http.StatusNoContent {
				assert.Zero(t, w.Body.Len())
			}
		})
	}
}

func TestInterviewQuestion(t *testing.T) {
	ts := newTestServer(t)
	ws := ts.createWorkspace(t)
	path := "/workspaces/" + ws.ID.String() + "/interview-question"

	w := ts.do(t, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	fillDraft(t, ts, ws)
	w = ts.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.InterviewQuestionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Why Backend Engineer?", resp.Question)
}

func TestContact(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"valid", map[string]string{"name": "Ada", "email": "ada@example.com", "message": "Hi"}, http.StatusCreated},
		{"invalid email", map[string]string{"name": "Ada", "email": "ada", "message": "Hi"}, http.StatusBadRequest},
		{"missing message", map[string]string{"name": "Ada", "email": "ada@example.com"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			w := ts.do(t, http.MethodPost, "/contact", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, []string{"Ada"}, ts.store.contacts)
			}
		})
	}
}

func TestListAnalyses_BearerAuth(t *testing.T) {
	ts := newTestServer(t)
	ts.store.records = []types.HistoryRecord{{ID: uuid.New(), UserID: testUserID, JobTitle: "SRE"}}

	w := ts.do(t, http.MethodGet, "/v1/analyses", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/v1/analyses", nil, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/v1/analyses", nil, "Authorization", "Bearer "+testToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"job_title":"SRE"`)
}

func TestRateLimitMiddleware(t *testing.T) {
	ts := newTestServer(t, func(c *Config, _ *Deps) {
		c.RateLimit = &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: time.Minute,
			EndpointConfigs: []ratelimit.EndpointConfig{
				{Path: "/contact", Method: "POST", Limit: 1, Window: time.Minute, Burst: 1},
			},
		}
	})
	body := map[string]string{"name": "Ada", "email": "ada@example.com", "message": "Hi"}

	w := ts.do(t, http.MethodPost, "/contact", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = ts.do(t, http.MethodPost, "/contact", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}
