package backend

import "time"

// Link is a short-link record as the API returns it. A nil ExpiresAt means
// the link never expires.
type Link struct {
	ID          string     `json:"id"`
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	Title       string     `json:"title,omitempty"`
	Clicks      int64      `json:"clicks"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// CreateLinkRequest is the payload for creating a link. CustomCode is an
// optional alias; when empty the API generates a code.
type CreateLinkRequest struct {
	OriginalURL string     `json:"original_url"`
	CustomCode  string     `json:"custom_code,omitempty"`
	Title       string     `json:"title,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateLinkRequest carries the mutable fields of a link. Zero-value
// fields are left unchanged by the API.
type UpdateLinkRequest struct {
	OriginalURL string     `json:"original_url,omitempty"`
	Title       string     `json:"title,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ListLinksOptions controls pagination and ordering of ListLinks.
type ListLinksOptions struct {
	Page    int
	PerPage int
	SortBy  string
	Desc    bool
}

// QRDesign is the stored QR customization for a link.
type QRDesign struct {
	LinkID          string `json:"link_id"`
	ForegroundColor string `json:"foreground_color"`
	BackgroundColor string `json:"background_color"`
	Size            int    `json:"size"`
	IncludeLogo     bool   `json:"include_logo"`
}

// FeedbackPost is one entry on the feedback board.
type FeedbackPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Votes     int64     `json:"votes"`
	HasVoted  bool      `json:"has_voted"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitFeedbackRequest is the payload for a new feedback post.
type SubmitFeedbackRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category,omitempty"`
}

// VoteResult is the server-confirmed outcome of a vote toggle.
type VoteResult struct {
	PostID   string `json:"post_id"`
	Votes    int64  `json:"votes"`
	HasVoted bool   `json:"has_voted"`
}

type lookupResponse struct {
	OriginalURL string `json:"original_url"`
}

type listLinksResponse struct {
	Links []Link `json:"links"`
	Total int    `json:"total"`
}

type listFeedbackResponse struct {
	Posts []FeedbackPost `json:"posts"`
}
