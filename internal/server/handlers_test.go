package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/storage"
	"github.com/postforge/postforge/internal/storage/memory"
)

type stubRunner struct {
	result *domain.PostResult
	err    error
	spec   *domain.ContentSpec
	vis    domain.Visibility
}

func (s *stubRunner) Run(ctx context.Context, spec *domain.ContentSpec, vis domain.Visibility) (*domain.PostResult, error) {
	s.spec = spec
	s.vis = vis
	if s.err != nil {
		return &domain.PostResult{Success: false, ErrorDetail: s.err.Error()}, s.err
	}
	return s.result, nil
}

type stubFetcher struct {
	user *domain.UserIdentity
	err  error
}

func (s *stubFetcher) Fetch(ctx context.Context) (*domain.UserIdentity, error) {
	return s.user, s.err
}

type stubGenerator struct {
	content *domain.GeneratedContent
	err     error
	spec    *domain.ContentSpec
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Generate(ctx context.Context, spec *domain.ContentSpec) (*domain.GeneratedContent, error) {
	s.spec = spec
	return s.content, s.err
}

type stubDeleter struct {
	err     error
	deleted string
}

func (s *stubDeleter) Delete(ctx context.Context, postID string) error {
	s.deleted = postID
	return s.err
}

type recordedDelay struct {
	spec  *domain.ContentSpec
	delay time.Duration
}

func newTestRouter(h *Handlers) *chi.Mux {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func TestHandleRoot(t *testing.T) {
	h := NewHandlers(&stubRunner{}, &stubFetcher{}, &stubGenerator{}, &stubDeleter{}, nil, nil)
	r := newTestRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["service"] != "postforge" {
		t.Errorf("service = %v, want postforge", body["service"])
	}
}

func TestHandleUserInfo(t *testing.T) {
	h := NewHandlers(&stubRunner{}, &stubFetcher{
		user: &domain.UserIdentity{ID: "u123", Name: "Jane Doe"},
	}, &stubGenerator{}, &stubDeleter{}, nil, nil)
	r := newTestRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/user/info", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var user domain.UserIdentity
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.ID != "u123" || user.Name != "Jane Doe" {
		t.Errorf("user = %+v", user)
	}
}

func TestHandleUserInfo_AuthError(t *testing.T) {
	h := NewHandlers(&stubRunner{}, &stubFetcher{
		err: domain.AuthError("token expired").WithStatus(401),
	}, &stubGenerator{}, &stubDeleter{}, nil, nil)
	r := newTestRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/user/info", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Kind != string(domain.ErrorKindAuth) {
		t.Errorf("kind = %q, want %q", env.Error.Kind, domain.ErrorKindAuth)
	}
	if env.Error.Status != 401 {
		t.Errorf("status = %d, want 401", env.Error.Status)
	}
}

func TestHandleGenerateContent(t *testing.T) {
	gen := &stubGenerator{content: &domain.GeneratedContent{Text: "Generated post.", Model: "test-model"}}
	h := NewHandlers(&stubRunner{}, &stubFetcher{}, gen, &stubDeleter{}, nil, nil)
	r := newTestRouter(h)

	body := `{"topic": "ai agents", "tone": "casual", "include_hashtags": false}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/generate-content", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if gen.spec.Topic != "ai agents" {
		t.Errorf("topic = %q, want %q", gen.spec.Topic, "ai agents")
	}
	if gen.spec.Tone != domain.ToneCasual {
		t.Errorf("tone = %q, want casual", gen.spec.Tone)
	}
	if gen.spec.IncludeHashtags {
		t.Error("IncludeHashtags = true, want false")
	}
}

func TestHandleGenerateContent_MissingTopic(t *testing.T) {
	h := NewHandlers(&stubRunner{}, &stubFetcher{}, &stubGenerator{}, &stubDeleter{}, nil, nil)
	r := newTestRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/generate-content", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCreatePost(t *testing.T) {
	runner := &stubRunner{result: &domain.PostResult{Success: true, PostID: "urn:li:share:999"}}
	h := NewHandlers(runner, &stubFetcher{}, &stubGenerator{}, &stubDeleter{}, nil, nil)
	r := newTestRouter(h)

	body := `{"topic": "go concurrency", "visibility": "CONNECTIONS"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/posts", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if runner.vis != domain.VisibilityConnections {
		t.Errorf("visibility = %q, want CONNECTIONS", runner.vis)
	}
	var result domain.PostResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success || result.PostID != "urn:li:share:999" {
		t.Errorf("result = %+v", result)
	}
}

func TestHandleCreatePost_PrewrittenContent(t *testing.T) {
	runner := &stubRunner{result: &domain.PostResult{Success: true, PostID: "urn:li:share:1"}}
	h := NewHandlers(runner, &stubFetcher{}, &stubGenerator{}, &stubDeleter{}, nil, nil)
	r := newTestRouter(h)

	body := `{"content": "Shipping day. More soon."}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/posts", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if runner.spec.Content != "Shipping day. More soon." {
		t.Errorf("content = %q", runner.spec.Content)
	}
	if runner.vis != domain.VisibilityPublic {
		t.Errorf("default visibility = %q, want PUBLIC", runner.vis)
	}
}

func TestHandleCreatePost_NoTopicNoContent(t *testing.T) {
	h := NewHandlers(&stubRunner{}, &stubFetcher{}, &stubGenerator{}, &stubDeleter{}, nil, nil)
	r := newTestRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/posts", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCreatePost_PublishError(t *testing.T) {
	runner := &stubRunner{err: domain.PublishError(429, "rate limited")}
	h := NewHandlers(runner, &stubFetcher{}, &stubGenerator{}, &stubDeleter{}, nil, nil)
	r := newTestRouter(h)

	body := `{"topic": "ai"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/posts", strings.NewReader(body)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Kind != string(domain.ErrorKindPublish) || env.Error.Status != 429 {
		t.Errorf("error = %+v, want publish/429", env.Error)
	}
}

func TestHandleListRuns(t *testing.T) {
	store := memory.New()
	defer store.Close()
	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := store.CreateRun(context.Background(), &storage.RunRecord{
			ID:        id,
			Topic:     "ai",
			Status:    storage.RunRunning,
			StartedAt: time.Now(),
		}); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	h := NewHandlers(&stubRunner{}, &stubFetcher{}, &stubGenerator{}, &stubDeleter{}, nil, store)
	r := newTestRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/posts?limit=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Runs []*storage.RunRecord `json:"runs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Runs) != 2 {
		t.Errorf("len(runs) = %d, want 2", len(body.Runs))
	}
}

func TestHandleListRuns_InvalidLimit(t *testing.T) {
	h := NewHandlers(&stubRunner{}, &stubFetcher{}, &stubGenerator{}, &stubDeleter{}, nil, nil)
	r := newTestRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/posts?limit=zero", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDeletePost(t *testing.T) {
	deleter := &stubDeleter{}
	h := NewHandlers(&stubRunner{}, &stubFetcher{}, &stubGenerator{}, deleter, nil, nil)
	r := newTestRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("DELETE", "/posts/urn:li:share:42", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if deleter.deleted != "urn:li:share:42" {
		t.Errorf("deleted = %q, want urn:li:share:42", deleter.deleted)
	}
}

func TestHandleDeletePost_UpstreamError(t *testing.T) {
	deleter := &stubDeleter{err: domain.PublishError(404, "not found")}
	h := NewHandlers(&stubRunner{}, &stubFetcher{}, &stubGenerator{}, deleter, nil, nil)
	r := newTestRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("DELETE", "/posts/urn:li:share:42", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestHandleSchedulePost(t *testing.T) {
	var got recordedDelay
	delayer := DelayerFunc(func(spec *domain.ContentSpec, delay time.Duration) {
		got = recordedDelay{spec: spec, delay: delay}
	})
	h := NewHandlers(&stubRunner{}, &stubFetcher{}, &stubGenerator{}, &stubDeleter{}, delayer, nil)
	r := newTestRouter(h)

	body := `{"topic": "ml ops", "delay": "15m"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/posts/schedule", strings.NewReader(body)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if got.spec == nil || got.spec.Topic != "ml ops" {
		t.Fatalf("scheduled spec = %+v", got.spec)
	}
	if got.delay != 15*time.Minute {
		t.Errorf("delay = %v, want 15m", got.delay)
	}
}

func TestHandleSchedulePost_InvalidDelay(t *testing.T) {
	h := NewHandlers(&stubRunner{}, &stubFetcher{}, &stubGenerator{}, &stubDeleter{}, DelayerFunc(func(*domain.ContentSpec, time.Duration) {}), nil)
	r := newTestRouter(h)

	body := `{"topic": "ml ops", "delay": "soon"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/posts/schedule", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
