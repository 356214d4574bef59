package cylink

import (
	"context"
	"errors"
	"strings"

	"github.com/cylink-sh/cylink-go/backend"
)

const (
	feedbackTitleMax = 120
	feedbackBodyMax  = 4000
)

// ListFeedback fetches the feedback board.
func (e *Engine) ListFeedback(ctx context.Context) ([]FeedbackPost, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}

	posts, err := e.backend.ListFeedback(ctx)
	if err != nil {
		return nil, mapFeedbackErr(err)
	}
	return posts, nil
}

// SubmitFeedback creates a feedback post after client-side validation.
func (e *Engine) SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest) (*FeedbackPost, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	if strings.TrimSpace(req.Title) == "" || len(req.Title) > feedbackTitleMax || len(req.Body) > feedbackBodyMax {
		return nil, ErrInvalidFeedback
	}

	post, err := e.backend.SubmitFeedback(ctx, req)
	if err != nil {
		mapped := mapFeedbackErr(err)
		e.emitTelemetry(ctx, telemetryEventFeedbackSubmitted, "", "failed", -1, mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricFeedbackSubmitted)
	e.emitTelemetry(ctx, telemetryEventFeedbackSubmitted, "", "submitted", -1, nil, func() map[string]string {
		return map[string]string{
			"post_id":  post.ID,
			"category": post.Category,
		}
	})
	return post, nil
}

// Vote toggles the caller's vote on a feedback post and returns the
// server-confirmed result.
func (e *Engine) Vote(ctx context.Context, postID string) (*VoteResult, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	if strings.TrimSpace(postID) == "" {
		return nil, ErrFeedbackNotFound
	}

	result, err := e.backend.Vote(ctx, postID)
	if err != nil {
		mapped := mapFeedbackErr(err)
		e.emitTelemetry(ctx, telemetryEventFeedbackVoted, "", "failed", -1, mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricFeedbackVoted)
	e.emitTelemetry(ctx, telemetryEventFeedbackVoted, "", "voted", -1, nil, func() map[string]string {
		return map[string]string{
			"post_id": result.PostID,
		}
	})
	return result, nil
}

// ApplyVote reconciles a server-confirmed vote result into a client-held
// board: the matching post (by ID) gets the confirmed count and flag,
// everything else is untouched. It reports whether a post matched. The
// slice is modified in place; callers holding snapshots should copy first.
func ApplyVote(posts []FeedbackPost, result VoteResult) bool {
	for i := range posts {
		if posts[i].ID == result.PostID {
			posts[i].Votes = result.Votes
			posts[i].HasVoted = result.HasVoted
			return true
		}
	}
	return false
}

func mapFeedbackErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, backend.ErrNotFound):
		return ErrFeedbackNotFound
	case errors.Is(err, backend.ErrUnauthorized):
		return ErrUnauthorized
	default:
		return errors.Join(ErrBackendUnavailable, err)
	}
}
