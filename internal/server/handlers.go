package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/generator"
	"github.com/postforge/postforge/internal/identity"
	"github.com/postforge/postforge/internal/storage"
)

// Runner executes one end-to-end pipeline run.
type Runner interface {
	Run(ctx context.Context, spec *domain.ContentSpec, visibility domain.Visibility) (*domain.PostResult, error)
}

// PostDeleter removes a previously published post upstream.
type PostDeleter interface {
	Delete(ctx context.Context, postID string) error
}

// Delayer enqueues a one-off delayed run. Implementations own the
// lifetime of the delayed run, the request context does not.
type Delayer interface {
	ScheduleOnce(spec *domain.ContentSpec, delay time.Duration)
}

// DelayerFunc adapts a function to the Delayer interface.
type DelayerFunc func(spec *domain.ContentSpec, delay time.Duration)

func (f DelayerFunc) ScheduleOnce(spec *domain.ContentSpec, delay time.Duration) { f(spec, delay) }

// Handlers holds the HTTP surface over the pipeline stages.
type Handlers struct {
	runner   Runner
	identity identity.Fetcher
	gen      generator.Generator
	deleter  PostDeleter
	delayer  Delayer
	store    storage.RunStore
	validate *validator.Validate
}

func NewHandlers(runner Runner, id identity.Fetcher, gen generator.Generator, deleter PostDeleter, delayer Delayer, store storage.RunStore) *Handlers {
	if store == nil {
		store = storage.Nop{}
	}
	return &Handlers{
		runner:   runner,
		identity: id,
		gen:      gen,
		deleter:  deleter,
		delayer:  delayer,
		store:    store,
		validate: validator.New(),
	}
}

// Routes mounts all endpoints on the router.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/", h.HandleRoot)
	r.Get("/healthz", h.HandleHealth)
	r.Get("/user/info", h.HandleUserInfo)
	r.Post("/generate-content", h.HandleGenerateContent)
	r.Post("/posts", h.HandleCreatePost)
	r.Get("/posts", h.HandleListRuns)
	r.Delete("/posts/{id}", h.HandleDeletePost)
	r.Post("/posts/schedule", h.HandleSchedulePost)
}

func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "postforge",
		"status":    "ok",
		"providers": generator.ListProviders(),
	})
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.Fetch(r.Context())
	if err != nil {
		h.writeStageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GenerateContentRequest is the inbound payload for generation without
// publishing.
type GenerateContentRequest struct {
	Topic           string `json:"topic" validate:"required"`
	Tone            string `json:"tone" validate:"omitempty,oneof=professional casual inspirational educational promotional"`
	Length          string `json:"length" validate:"omitempty,oneof=short medium long"`
	IncludeHashtags *bool  `json:"include_hashtags"`
	TargetAudience  string `json:"target_audience"`
	CallToAction    string `json:"call_to_action"`
	MaxChars        int    `json:"max_chars" validate:"omitempty,min=100,max=3000"`
}

func (h *Handlers) HandleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req GenerateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	spec := specFromRequest(req.Topic, "", req.Tone, req.Length, req.IncludeHashtags, req.TargetAudience, req.CallToAction, req.MaxChars)
	content, err := h.gen.Generate(r.Context(), spec)
	if err != nil {
		h.writeStageError(w, r, err)
		return
	}

	AddLogField(r.Context(), "provider", h.gen.Name())
	writeJSON(w, http.StatusOK, content)
}

// CreatePostRequest is the inbound payload for a full pipeline run.
// Content, when given, is published as-is and generation is skipped.
type CreatePostRequest struct {
	Topic           string `json:"topic" validate:"required_without=Content"`
	Content         string `json:"content"`
	Tone            string `json:"tone" validate:"omitempty,oneof=professional casual inspirational educational promotional"`
	Length          string `json:"length" validate:"omitempty,oneof=short medium long"`
	Visibility      string `json:"visibility" validate:"omitempty,oneof=PUBLIC CONNECTIONS"`
	IncludeHashtags *bool  `json:"include_hashtags"`
	TargetAudience  string `json:"target_audience"`
	CallToAction    string `json:"call_to_action"`
	MaxChars        int    `json:"max_chars" validate:"omitempty,min=100,max=3000"`
}

func (h *Handlers) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	spec := specFromRequest(req.Topic, req.Content, req.Tone, req.Length, req.IncludeHashtags, req.TargetAudience, req.CallToAction, req.MaxChars)
	result, err := h.runner.Run(r.Context(), spec, visibilityOrDefault(req.Visibility))
	if err != nil {
		h.writeStageError(w, r, err)
		return
	}

	AddLogField(r.Context(), "post_id", result.PostID)
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{Limit: 50}
	if s := r.URL.Query().Get("status"); s != "" {
		opts.Status = storage.RunStatus(s)
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		opts.Limit = n
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return
		}
		opts.Offset = n
	}

	runs, err := h.store.ListRuns(r.Context(), opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*storage.RunRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *Handlers) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	if postID == "" {
		http.Error(w, "missing post id", http.StatusBadRequest)
		return
	}

	if err := h.deleter.Delete(r.Context(), postID); err != nil {
		h.writeStageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SchedulePostRequest enqueues a delayed run.
type SchedulePostRequest struct {
	CreatePostRequest
	Delay string `json:"delay" validate:"required"`
}

func (h *Handlers) HandleSchedulePost(w http.ResponseWriter, r *http.Request) {
	var req SchedulePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	delay, err := time.ParseDuration(req.Delay)
	if err != nil || delay < 0 {
		http.Error(w, "invalid delay", http.StatusBadRequest)
		return
	}

	spec := specFromRequest(req.Topic, req.Content, req.Tone, req.Length, req.IncludeHashtags, req.TargetAudience, req.CallToAction, req.MaxChars)
	h.delayer.ScheduleOnce(spec, delay)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"scheduled": true,
		"topic":     req.Topic,
		"runs_in":   delay.String(),
	})
}

func specFromRequest(topic, content, tone, length string, hashtags *bool, audience, cta string, maxChars int) *domain.ContentSpec {
	includeHashtags := true
	if hashtags != nil {
		includeHashtags = *hashtags
	}
	return &domain.ContentSpec{
		Topic:           topic,
		Content:         content,
		Tone:            domain.Tone(tone),
		Length:          domain.Length(length),
		IncludeHashtags: includeHashtags,
		TargetAudience:  audience,
		CallToAction:    cta,
		MaxChars:        maxChars,
	}
}

func visibilityOrDefault(s string) domain.Visibility {
	v := domain.Visibility(strings.ToUpper(s))
	if !v.Valid() {
		return domain.VisibilityPublic
	}
	return v
}

// errorEnvelope is the JSON shape for stage failures surfaced to callers.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// writeStageError maps pipeline stage failures to responses. Upstream
// failures come back as 502 with the stage's error kind so callers can
// tell an expired token from a rate-limited publish.
func (h *Handlers) writeStageError(w http.ResponseWriter, r *http.Request, err error) {
	AddError(r.Context(), err)

	var derr *domain.Error
	if errors.As(err, &derr) {
		writeJSON(w, http.StatusBadGateway, errorEnvelope{Error: errorBody{
			Kind:    string(derr.Kind),
			Status:  derr.StatusCode,
			Message: derr.Message,
		}})
		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
