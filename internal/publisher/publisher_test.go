package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/postforge/postforge/internal/api/linkedin"
	"github.com/postforge/postforge/internal/domain"
)

func newServer(t *testing.T, handler func(req linkedin.UGCPostRequest, w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req linkedin.UGCPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		handler(req, w)
	}))
}

func TestPublish(t *testing.T) {
	var got linkedin.UGCPostRequest
	srv := newServer(t, func(req linkedin.UGCPostRequest, w http.ResponseWriter) {
		got = req
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(linkedin.UGCPostResponse{ID: "urn:li:share:999"})
	})
	defer srv.Close()

	p := NewLinkedInPublisher(linkedin.NewClient("tok", linkedin.WithBaseURL(srv.URL)))
	result, err := p.Publish(context.Background(), &domain.PostRequest{
		AuthorID:   "u123",
		Text:       "Excited to announce...",
		Visibility: domain.VisibilityPublic,
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if !result.Success || result.PostID != "urn:li:share:999" {
		t.Errorf("result = %+v", result)
	}
	if got.Author != "urn:li:person:u123" {
		t.Errorf("author = %q, want URN-normalized id", got.Author)
	}
	if got.SpecificContent.ShareContent.ShareCommentary.Text != "Excited to announce..." {
		t.Errorf("commentary = %q", got.SpecificContent.ShareContent.ShareCommentary.Text)
	}
	if got.Visibility.MemberNetworkVisibility != "PUBLIC" {
		t.Errorf("visibility = %q", got.Visibility.MemberNetworkVisibility)
	}
}

func TestPublishTruncatesOverLengthText(t *testing.T) {
	var gotText string
	srv := newServer(t, func(req linkedin.UGCPostRequest, w http.ResponseWriter) {
		gotText = req.SpecificContent.ShareContent.ShareCommentary.Text
		json.NewEncoder(w).Encode(linkedin.UGCPostResponse{ID: "urn:li:share:1"})
	})
	defer srv.Close()

	p := NewLinkedInPublisher(
		linkedin.NewClient("tok", linkedin.WithBaseURL(srv.URL)),
		WithMaxChars(300),
	)
	long := strings.Repeat("More characters in every sentence. ", 20) // 700 chars
	_, err := p.Publish(context.Background(), &domain.PostRequest{AuthorID: "u123", Text: long, Visibility: domain.VisibilityPublic})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if n := len([]rune(gotText)); n > 300 {
		t.Errorf("published text over ceiling: %d chars", n)
	}
}

func TestPublishRejectsEmptyText(t *testing.T) {
	p := NewLinkedInPublisher(linkedin.NewClient("tok"))
	_, err := p.Publish(context.Background(), &domain.PostRequest{AuthorID: "u123", Text: "   "})
	if !domain.IsKind(err, domain.ErrorKindPublish) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestPublishSurfacesUpstreamStatus(t *testing.T) {
	srv := newServer(t, func(req linkedin.UGCPostRequest, w http.ResponseWriter) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"message": "content rejected", "status": 422})
	})
	defer srv.Close()

	p := NewLinkedInPublisher(linkedin.NewClient("tok", linkedin.WithBaseURL(srv.URL)))
	_, err := p.Publish(context.Background(), &domain.PostRequest{AuthorID: "u123", Text: "hi", Visibility: domain.VisibilityPublic})
	de := domain.AsError(err)
	if de.Kind != domain.ErrorKindPublish || de.StatusCode != 422 {
		t.Fatalf("expected publish error with 422, got %v", err)
	}
}

func TestPublishArticle(t *testing.T) {
	var got linkedin.UGCPostRequest
	srv := newServer(t, func(req linkedin.UGCPostRequest, w http.ResponseWriter) {
		got = req
		json.NewEncoder(w).Encode(linkedin.UGCPostResponse{ID: "urn:li:share:2"})
	})
	defer srv.Close()

	p := NewLinkedInPublisher(linkedin.NewClient("tok", linkedin.WithBaseURL(srv.URL)))
	result, err := p.PublishArticle(context.Background(), &domain.PostRequest{AuthorID: "u123", Text: "body"}, "Title")
	if err != nil {
		t.Fatalf("PublishArticle() error = %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	sc := got.SpecificContent.ShareContent
	if sc.ShareMediaCategory != "ARTICLE" {
		t.Errorf("media category = %q", sc.ShareMediaCategory)
	}
	if len(sc.Media) != 1 || sc.Media[0].Title.Text != "Title" {
		t.Errorf("media = %+v", sc.Media)
	}
}

func TestAuthorURN(t *testing.T) {
	if got := AuthorURN("u123"); got != "urn:li:person:u123" {
		t.Errorf("AuthorURN = %q", got)
	}
	if got := AuthorURN("urn:li:person:u123"); got != "urn:li:person:u123" {
		t.Errorf("AuthorURN should be idempotent, got %q", got)
	}
}
