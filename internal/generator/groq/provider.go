// Package groq implements the generator.Generator interface on top of
// Groq's OpenAI-compatible chat completions API.
package groq

import (
	"context"
	"net/http"
	"strings"
	"time"

	groqapi "github.com/postforge/postforge/internal/api/groq"
	"github.com/postforge/postforge/internal/config"
	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/generator"
)

// ProviderType is the config name this provider registers under.
const ProviderType = "groq"

// Model aliases. Config may name a model directly or use one of these.
var modelAliases = map[string]string{
	"fast":     "llama-3.1-8b-instant",
	"balanced": "gemma2-9b-it",
	"quality":  "llama-3.3-70b-versatile",
}

const defaultAlias = "quality"

// Register wires this provider into the generator factory registry.
func Register() {
	if generator.IsRegistered(ProviderType) {
		return
	}
	generator.RegisterFactory(ProviderType, CreateFromConfig)
}

// CreateFromConfig builds a provider from configuration.
func CreateFromConfig(cfg config.GeneratorConfig, httpClient *http.Client) (generator.Generator, error) {
	var opts []ProviderOption
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, WithHTTPClient(httpClient))
	}
	if cfg.Model != "" {
		opts = append(opts, WithModel(cfg.Model))
	}
	if cfg.Temperature != 0 {
		opts = append(opts, WithTemperature(cfg.Temperature))
	}
	return New(cfg.APIKey, opts...), nil
}

// ProviderOption configures the provider.
type ProviderOption func(*Provider)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = httpClient
	}
}

// WithModel sets the model, resolving aliases (fast, balanced, quality).
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = resolveModel(model)
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ProviderOption {
	return func(p *Provider) {
		p.temperature = t
	}
}

func resolveModel(model string) string {
	if resolved, ok := modelAliases[model]; ok {
		return resolved
	}
	return model
}

// Provider generates post content through the Groq API.
type Provider struct {
	client      *groqapi.Client
	model       string
	temperature float64
	baseURL     string
	httpClient  *http.Client
}

// New creates a new Groq generator.
func New(apiKey string, opts ...ProviderOption) *Provider {
	p := &Provider{
		model:       modelAliases[defaultAlias],
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []groqapi.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, groqapi.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, groqapi.WithHTTPClient(p.httpClient))
	}
	p.client = groqapi.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return ProviderType
}

// Generate builds the prompt and calls the model. When the configured
// model has been decommissioned upstream, one attempt is made with the
// fast model before giving up.
func (p *Provider) Generate(ctx context.Context, spec *domain.ContentSpec) (*domain.GeneratedContent, error) {
	content, err := p.generateWith(ctx, p.model, spec)
	if err != nil && isRetiredModelError(err) && p.model != modelAliases["fast"] {
		return p.generateWith(ctx, modelAliases["fast"], spec)
	}
	return content, err
}

func (p *Provider) generateWith(ctx context.Context, model string, spec *domain.ContentSpec) (*domain.GeneratedContent, error) {
	req := &groqapi.ChatCompletionRequest{
		Model: model,
		Messages: []groqapi.Message{
			{Role: "system", Content: generator.SystemPrompt},
			{Role: "user", Content: generator.BuildPrompt(spec)},
		},
		MaxTokens:   800,
		Temperature: p.temperature,
		TopP:        0.9,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, domain.GenerationError("empty response from model")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	text := generator.EnforceLimit(generator.CleanResponse(raw), spec.MaxChars)
	return &domain.GeneratedContent{
		Text:      text,
		Model:     model,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func isRetiredModelError(err error) bool {
	if !domain.IsKind(err, domain.ErrorKindGeneration) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "decommissioned") || strings.Contains(msg, "deprecated")
}
