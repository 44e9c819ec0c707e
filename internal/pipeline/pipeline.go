// Package pipeline orchestrates one posting run: identity fetch, content
// generation, publish. Stages execute in strict sequence; the first
// failure aborts the run and is surfaced verbatim. A failed publish is
// never retried automatically.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/generator"
	"github.com/postforge/postforge/internal/identity"
	"github.com/postforge/postforge/internal/publisher"
	"github.com/postforge/postforge/internal/storage"
)

// Pipeline wires the three stages together with run-history recording
// and per-upstream circuit breakers.
type Pipeline struct {
	identity  identity.Fetcher
	generator generator.Generator
	publisher publisher.Publisher
	store     storage.RunStore
	logger    *slog.Logger

	identityCB  *gobreaker.CircuitBreaker
	generateCB  *gobreaker.CircuitBreaker
	publishCB   *gobreaker.CircuitBreaker
	callTimeout time.Duration
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithStore sets the run-history store.
func WithStore(store storage.RunStore) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithCallTimeout bounds each external call. Zero disables the
// per-stage timeout and leaves only the caller's context deadline.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.callTimeout = d
	}
}

// New creates a pipeline over the given stage implementations.
func New(id identity.Fetcher, gen generator.Generator, pub publisher.Publisher, opts ...Option) *Pipeline {
	p := &Pipeline{
		identity:    id,
		generator:   gen,
		publisher:   pub,
		store:       storage.Nop{},
		logger:      slog.Default(),
		callTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.identityCB = newBreaker("identity", p.logger)
	p.generateCB = newBreaker("generator", p.logger)
	p.publishCB = newBreaker("publisher", p.logger)
	return p
}

// Run executes one pipeline run. On failure the PostResult carries the
// error detail and the error itself classifies the failed stage.
func (p *Pipeline) Run(ctx context.Context, spec *domain.ContentSpec, visibility domain.Visibility) (*domain.PostResult, error) {
	runID := uuid.New().String()
	log := p.logger.With(slog.String("run_id", runID), slog.String("topic", spec.Topic))

	record := &storage.RunRecord{
		ID:       runID,
		Topic:    spec.Topic,
		Provider: p.generator.Name(),
	}
	if err := p.store.CreateRun(ctx, record); err != nil {
		log.Warn("failed to record run start", slog.String("error", err.Error()))
	}

	result, err := p.run(ctx, log, spec, visibility)
	if err != nil {
		detail := domain.AsError(err).Error()
		if ferr := p.store.FinishRun(ctx, runID, storage.RunFailed, "", detail); ferr != nil {
			log.Warn("failed to record run failure", slog.String("error", ferr.Error()))
		}
		log.Error("run failed", slog.String("error", detail))
		return &domain.PostResult{Success: false, ErrorDetail: detail}, err
	}

	if ferr := p.store.FinishRun(ctx, runID, storage.RunSucceeded, result.PostID, ""); ferr != nil {
		log.Warn("failed to record run success", slog.String("error", ferr.Error()))
	}
	log.Info("run succeeded", slog.String("post_id", result.PostID))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, log *slog.Logger, spec *domain.ContentSpec, visibility domain.Visibility) (*domain.PostResult, error) {
	// Stage 1: identity fetch
	user, err := execute(p.identityCB, domain.ErrorKindAuth, func() (*domain.UserIdentity, error) {
		callCtx, cancel := p.stageContext(ctx)
		defer cancel()
		return p.identity.Fetch(callCtx)
	})
	if err != nil {
		return nil, err
	}
	log.Debug("identity fetched", slog.String("user_id", user.ID))

	// Stage 2: content generation, skipped for pre-written content
	text := spec.Content
	if text == "" {
		content, err := execute(p.generateCB, domain.ErrorKindGeneration, func() (*domain.GeneratedContent, error) {
			callCtx, cancel := p.stageContext(ctx)
			defer cancel()
			return p.generator.Generate(callCtx, spec)
		})
		if err != nil {
			return nil, err
		}
		text = content.Text
		log.Debug("content generated",
			slog.String("model", content.Model),
			slog.Int("length", len([]rune(text))),
		)
	}

	// Stage 3: publish, exactly one attempt
	return execute(p.publishCB, domain.ErrorKindPublish, func() (*domain.PostResult, error) {
		callCtx, cancel := p.stageContext(ctx)
		defer cancel()
		return p.publisher.Publish(callCtx, &domain.PostRequest{
			AuthorID:   user.ID,
			Text:       text,
			Visibility: visibility,
		})
	})
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.callTimeout)
}
