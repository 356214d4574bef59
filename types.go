package cylink

import "github.com/cylink-sh/cylink-go/backend"

// ResolutionSource identifies which lookup tier produced a resolution.
type ResolutionSource uint8

const (
	// SourcePublic means the unauthenticated endpoint answered.
	SourcePublic ResolutionSource = iota
	// SourceAuthenticated means the public tier failed and the
	// authenticated fallback answered.
	SourceAuthenticated
)

// String returns the tier name used in telemetry and metrics labels.
func (s ResolutionSource) String() string {
	switch s {
	case SourcePublic:
		return "public"
	case SourceAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Resolution is the successful outcome of Engine.Resolve. It carries no
// caller-visible state beyond the destination; click recording happens on a
// separate, non-blocking channel.
type Resolution struct {
	ShortCode   string
	OriginalURL string
	Source      ResolutionSource
}

// Wire types are owned by the backend package; re-exported here so most
// consumers never import backend directly.
type (
	Link                  = backend.Link
	CreateLinkRequest     = backend.CreateLinkRequest
	UpdateLinkRequest     = backend.UpdateLinkRequest
	ListLinksOptions      = backend.ListLinksOptions
	QRDesign              = backend.QRDesign
	FeedbackPost          = backend.FeedbackPost
	SubmitFeedbackRequest = backend.SubmitFeedbackRequest
	VoteResult            = backend.VoteResult
)
