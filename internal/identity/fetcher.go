// Package identity implements the identity-fetch stage: it resolves the
// acting user's profile so the outgoing post can be attributed.
package identity

import (
	"context"

	"github.com/postforge/postforge/internal/api/linkedin"
	"github.com/postforge/postforge/internal/domain"
)

// Fetcher resolves the acting user's identity.
type Fetcher interface {
	Fetch(ctx context.Context) (*domain.UserIdentity, error)
}

// LinkedInFetcher fetches identity from the OpenID Connect userinfo
// endpoint.
type LinkedInFetcher struct {
	client *linkedin.Client
}

// NewLinkedInFetcher creates a fetcher backed by the given client.
func NewLinkedInFetcher(client *linkedin.Client) *LinkedInFetcher {
	return &LinkedInFetcher{client: client}
}

func (f *LinkedInFetcher) Fetch(ctx context.Context) (*domain.UserIdentity, error) {
	info, err := f.client.Userinfo(ctx)
	if err != nil {
		return nil, err
	}
	if info.Sub == "" {
		return nil, domain.AuthError("userinfo response missing subject")
	}
	return &domain.UserIdentity{
		ID:         info.Sub,
		Name:       info.Name,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
	}, nil
}
