package domain

import "time"

// Visibility controls who can see a published post.
type Visibility string

const (
	VisibilityPublic      Visibility = "PUBLIC"
	VisibilityConnections Visibility = "CONNECTIONS"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityConnections
}

// Tone selects the register the generator writes in.
type Tone string

const (
	ToneProfessional  Tone = "professional"
	ToneCasual        Tone = "casual"
	ToneInspirational Tone = "inspirational"
	ToneEducational   Tone = "educational"
	TonePromotional   Tone = "promotional"
)

// Length selects the target size of generated content.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// UserIdentity is the acting user's profile, fetched once per pipeline run
// and used only to attribute the outgoing post.
type UserIdentity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Picture    string `json:"picture,omitempty"`
}

// ContentSpec describes what the generator should produce.
// If Content is non-empty the generation stage is skipped and the
// pre-written text is published as-is, subject to the character ceiling.
type ContentSpec struct {
	Topic           string
	Content         string
	Tone            Tone
	Length          Length
	IncludeHashtags bool
	TargetAudience  string
	CallToAction    string
	MaxChars        int
}

// GeneratedContent is the generator's output for a single run.
// It is discarded after the publish attempt.
type GeneratedContent struct {
	Text      string    `json:"text"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PostRequest is the publish payload, built by merging the fetched
// identity with the generated content.
type PostRequest struct {
	AuthorID   string     `json:"author_id"`
	Text       string     `json:"text"`
	Visibility Visibility `json:"visibility"`
}

// PostResult is the terminal value of a pipeline run.
type PostResult struct {
	Success     bool   `json:"success"`
	PostID      string `json:"post_id,omitempty"`
	ErrorDetail string `json:"error_detail,omitempty"`
}
