// Package publisher implements the publish stage: it shapes a post
// request into the UGC post schema and submits it.
package publisher

import (
	"context"
	"log/slog"
	"strings"

	"github.com/postforge/postforge/internal/api/linkedin"
	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/generator"
)

// LinkedIn's hard limit on share commentary.
const hardCharLimit = 3000

// Publisher submits a post and reports the outcome.
type Publisher interface {
	Publish(ctx context.Context, req *domain.PostRequest) (*domain.PostResult, error)
}

// LinkedInPublisher publishes UGC posts through the LinkedIn API.
type LinkedInPublisher struct {
	client   *linkedin.Client
	logger   *slog.Logger
	maxChars int
}

// PublisherOption configures the publisher.
type PublisherOption func(*LinkedInPublisher)

// WithMaxChars overrides the character ceiling re-checked before submit.
func WithMaxChars(n int) PublisherOption {
	return func(p *LinkedInPublisher) {
		p.maxChars = n
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *LinkedInPublisher) {
		p.logger = logger
	}
}

// NewLinkedInPublisher creates a publisher backed by the given client.
func NewLinkedInPublisher(client *linkedin.Client, opts ...PublisherOption) *LinkedInPublisher {
	p := &LinkedInPublisher{
		client:   client,
		logger:   slog.Default(),
		maxChars: generator.DefaultMaxChars,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish validates and submits the post. Over-length text is truncated
// at the ceiling before the call; a post is never forwarded over
// LinkedIn's hard limit.
func (p *LinkedInPublisher) Publish(ctx context.Context, req *domain.PostRequest) (*domain.PostResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.PublishError(0, "post text is empty")
	}

	text := req.Text
	limit := p.maxChars
	if limit <= 0 || limit > hardCharLimit {
		limit = hardCharLimit
	}
	if n := len([]rune(text)); n > limit {
		p.logger.Warn("post text over ceiling, truncating",
			slog.Int("length", n),
			slog.Int("limit", limit),
		)
		text = generator.EnforceLimit(text, limit)
	}

	visibility := req.Visibility
	if !visibility.Valid() {
		visibility = domain.VisibilityPublic
	}

	ugc := &linkedin.UGCPostRequest{
		Author:         AuthorURN(req.AuthorID),
		LifecycleState: "PUBLISHED",
		SpecificContent: linkedin.SpecificContent{
			ShareContent: linkedin.ShareContent{
				ShareCommentary:    linkedin.TextBlock{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: linkedin.PostVisibility{MemberNetworkVisibility: string(visibility)},
	}

	resp, err := p.client.CreatePost(ctx, ugc)
	if err != nil {
		return nil, err
	}

	p.logger.Info("post published",
		slog.String("post_id", resp.ID),
		slog.Int("length", len([]rune(text))),
	)
	return &domain.PostResult{Success: true, PostID: resp.ID}, nil
}

// PublishArticle publishes an article share with a title.
func (p *LinkedInPublisher) PublishArticle(ctx context.Context, req *domain.PostRequest, title string) (*domain.PostResult, error) {
	combined := title + "\n\n" + req.Text
	if n := len([]rune(combined)); n > hardCharLimit {
		combined = generator.EnforceLimit(combined, hardCharLimit)
	}

	visibility := req.Visibility
	if !visibility.Valid() {
		visibility = domain.VisibilityPublic
	}

	ugc := &linkedin.UGCPostRequest{
		Author:         AuthorURN(req.AuthorID),
		LifecycleState: "PUBLISHED",
		SpecificContent: linkedin.SpecificContent{
			ShareContent: linkedin.ShareContent{
				ShareCommentary:    linkedin.TextBlock{Text: combined},
				ShareMediaCategory: "ARTICLE",
				Media: []linkedin.Media{{
					Status:      "READY",
					Description: linkedin.TextBlock{Text: req.Text},
					Title:       linkedin.TextBlock{Text: title},
				}},
			},
		},
		Visibility: linkedin.PostVisibility{MemberNetworkVisibility: string(visibility)},
	}

	resp, err := p.client.CreatePost(ctx, ugc)
	if err != nil {
		return nil, err
	}
	return &domain.PostResult{Success: true, PostID: resp.ID}, nil
}

// Delete removes a published post by URN.
func (p *LinkedInPublisher) Delete(ctx context.Context, postID string) error {
	return p.client.DeletePost(ctx, postID)
}

// AuthorURN normalizes a member id to the person URN the API expects.
func AuthorURN(personID string) string {
	if strings.HasPrefix(personID, "urn:li:person:") {
		return personID
	}
	return "urn:li:person:" + personID
}
