package linkedin

// UserinfoResponse is the OpenID Connect userinfo payload. The member id
// arrives in the "sub" claim.
type UserinfoResponse struct {
	Sub        string `json:"sub"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Locale     string `json:"locale"`
	Email      string `json:"email"`
}

// UGCPostRequest is the /v2/ugcPosts creation payload.
type UGCPostRequest struct {
	Author          string          `json:"author"`
	LifecycleState  string          `json:"lifecycleState"`
	SpecificContent SpecificContent `json:"specificContent"`
	Visibility      PostVisibility  `json:"visibility"`
}

type SpecificContent struct {
	ShareContent ShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type ShareContent struct {
	ShareCommentary    TextBlock `json:"shareCommentary"`
	ShareMediaCategory string    `json:"shareMediaCategory"`
	Media              []Media   `json:"media,omitempty"`
}

type TextBlock struct {
	Text string `json:"text"`
}

type Media struct {
	Status      string    `json:"status"`
	Description TextBlock `json:"description"`
	Title       TextBlock `json:"title"`
}

type PostVisibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

// UGCPostResponse is the creation result; ID is a share URN like
// "urn:li:share:999".
type UGCPostResponse struct {
	ID string `json:"id"`
}

// UGCPostList is the paged result of a ugcPosts query.
type UGCPostList struct {
	Elements []UGCPostElement `json:"elements"`
}

type UGCPostElement struct {
	ID             string `json:"id"`
	Author         string `json:"author"`
	LifecycleState string `json:"lifecycleState"`
}

// SocialActionsResponse is the engagement summary for one post from
// /v2/socialActions/{urn}.
type SocialActionsResponse struct {
	Target          string          `json:"target"`
	LikesSummary    LikesSummary    `json:"likesSummary"`
	CommentsSummary CommentsSummary `json:"commentsSummary"`
}

type LikesSummary struct {
	TotalLikes         int  `json:"totalLikes"`
	LikedByCurrentUser bool `json:"likedByCurrentUser"`
}

type CommentsSummary struct {
	TotalFirstLevelComments int `json:"totalFirstLevelComments"`
	AggregatedTotalComments int `json:"aggregatedTotalComments"`
}

// errorResponse is LinkedIn's error envelope.
type errorResponse struct {
	Message      string `json:"message"`
	ServiceError int    `json:"serviceErrorCode"`
	Status       int    `json:"status"`
}
