// Package gemini implements the generator.Generator interface on top of
// the Gemini generateContent API.
package gemini

import (
	"context"
	"net/http"
	"time"

	geminiapi "github.com/postforge/postforge/internal/api/gemini"
	"github.com/postforge/postforge/internal/config"
	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/generator"
)

// ProviderType is the config name this provider registers under.
const ProviderType = "gemini"

const defaultModel = "gemini-2.0-flash"

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

// WithModel overrides the default model.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ProviderOption {
	return func(p *Provider) {
		p.temperature = t
	}
}

// Provider generates post content through the Gemini API.
type Provider struct {
	client      *geminiapi.Client
	model       string
	temperature float64
	baseURL     string
	httpClient  *http.Client
}

// New creates a new Gemini generator.
func New(apiKey string, opts ...ProviderOption) *Provider {
	p := &Provider{
		model:       defaultModel,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []geminiapi.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, geminiapi.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, geminiapi.WithHTTPClient(p.httpClient))
	}
	p.client = geminiapi.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return ProviderType
}

// Generate builds the prompt, calls the model, cleans the response, and
// enforces the character ceiling.
func (p *Provider) Generate(ctx context.Context, spec *domain.ContentSpec) (*domain.GeneratedContent, error) {
	req := &geminiapi.GenerateContentRequest{
		SystemInstruction: &geminiapi.Content{
			Parts: []geminiapi.Part{{Text: generator.SystemPrompt}},
		},
		Contents: []geminiapi.Content{{
			Role:  "user",
			Parts: []geminiapi.Part{{Text: generator.BuildPrompt(spec)}},
		}},
		GenerationConfig: &geminiapi.GenerationConfig{
			Temperature:     p.temperature,
			MaxOutputTokens: 800,
		},
	}

	resp, err := p.client.GenerateContent(ctx, p.model, req)
	if err != nil {
		return nil, err
	}

	raw := resp.Text()
	if raw == "" {
		return nil, domain.GenerationError("empty response from model")
	}

	text := generator.EnforceLimit(generator.CleanResponse(raw), spec.MaxChars)
	return &domain.GeneratedContent{
		Text:      text,
		Model:     p.model,
		CreatedAt: time.Now().UTC(),
	}, nil
}
