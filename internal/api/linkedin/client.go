// Package linkedin is a thin HTTP client for the LinkedIn REST API:
// the OpenID Connect userinfo endpoint and the UGC posts endpoint.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/postforge/postforge/internal/domain"
)

const (
	defaultBaseURL   = "https://api.linkedin.com"
	restliVersion    = "2.0.0"
	defaultUserAgent = "postforge/1.0"
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client is a custom HTTP client for the LinkedIn API.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewClient creates a new LinkedIn API client.
func NewClient(accessToken string, opts ...ClientOption) *Client {
	c := &Client{
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Userinfo fetches the acting user's profile. A 401 or 403 maps to an
// auth error; transport and other failures map to network errors.
func (c *Client) Userinfo(ctx context.Context) (*UserinfoResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NetworkError(err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := errorMessage(respBody, resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, domain.AuthError(msg).WithStatus(resp.StatusCode)
		}
		return nil, domain.NetworkError(fmt.Errorf("userinfo failed: %s", msg)).WithStatus(resp.StatusCode)
	}

	var result UserinfoResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal userinfo response: %w", err)
	}
	return &result, nil
}

// CreatePost submits a UGC post. Non-2xx responses map to publish errors
// carrying the upstream status and message.
func (c *Client) CreatePost(ctx context.Context, req *UGCPostRequest) (*UGCPostResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NetworkError(err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, domain.PublishError(resp.StatusCode, errorMessage(respBody, resp.StatusCode))
	}

	var result UGCPostResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal post response: %w", err)
	}
	return &result, nil
}

// ListPosts fetches the author's recent posts, most recently modified first.
func (c *Client) ListPosts(ctx context.Context, authorURN string, count int) (*UGCPostList, error) {
	q := url.Values{}
	q.Set("q", "authors")
	q.Set("authors", authorURN)
	q.Set("count", strconv.Itoa(count))
	q.Set("sortBy", "LAST_MODIFIED")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/ugcPosts?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NetworkError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.PublishError(resp.StatusCode, errorMessage(respBody, resp.StatusCode))
	}

	var result UGCPostList
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal post list: %w", err)
	}
	return &result, nil
}

// PostAnalytics fetches engagement counts (likes, comments) for a
// published post. A 401 or 403 maps to an auth error; other failures
// map to network errors.
func (c *Client) PostAnalytics(ctx context.Context, postURN string) (*SocialActionsResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/socialActions/"+url.PathEscape(postURN), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NetworkError(err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := errorMessage(respBody, resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, domain.AuthError(msg).WithStatus(resp.StatusCode)
		}
		return nil, domain.NetworkError(fmt.Errorf("social actions failed: %s", msg)).WithStatus(resp.StatusCode)
	}

	var result SocialActionsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal social actions: %w", err)
	}
	return &result, nil
}

// DeletePost removes a post by URN. LinkedIn answers 204 on success.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v2/ugcPosts/"+url.PathEscape(postID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.NetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return domain.PublishError(resp.StatusCode, errorMessage(respBody, resp.StatusCode))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", restliVersion)
	req.Header.Set("User-Agent", defaultUserAgent)
}

func errorMessage(body []byte, status int) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Message != "" {
		return er.Message
	}
	if len(body) > 0 {
		return string(body)
	}
	return http.StatusText(status)
}
