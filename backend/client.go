package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cylink-sh/cylink-go/token"
)

// Config assembles a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.cylink.sh/v1".
	BaseURL string
	// UserAgent is sent on every request.
	UserAgent string
	// HTTPClient is the transport. Defaults to http.DefaultClient; pass a
	// client with a Timeout for production use.
	HTTPClient *http.Client
	// Tokens supplies bearer credentials for authenticated calls. May be
	// nil for public-only use.
	Tokens token.Source
}

// Client talks to the CyLink REST API. Safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	tokens    token.Source
}

// New validates the base URL and builds a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.New("base URL must be absolute")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "cylink-go"
	}

	return &Client{
		base:      base,
		http:      hc,
		userAgent: ua,
		tokens:    cfg.Tokens,
	}, nil
}

// LookupPublic resolves a short code on the unauthenticated endpoint.
// A 404 maps to ErrNotFound.
func (c *Client) LookupPublic(ctx context.Context, code string) (string, error) {
	return c.lookup(ctx, code, false)
}

// LookupAuthenticated resolves a short code with bearer credentials. Used
// by the engine only as the fallback tier.
func (c *Client) LookupAuthenticated(ctx context.Context, code string) (string, error) {
	return c.lookup(ctx, code, true)
}

func (c *Client) lookup(ctx context.Context, code string, authed bool) (string, error) {
	var out lookupResponse
	if err := c.do(ctx, http.MethodGet, "/urls/"+url.PathEscape(code), nil, authed, "", &out); err != nil {
		return "", err
	}
	if out.OriginalURL == "" {
		return "", fmt.Errorf("%w: empty original_url", ErrMalformedResponse)
	}
	return out.OriginalURL, nil
}

// RecordClick registers one click on a short code. The response body is
// ignored; only transport and status failures are reported so the caller
// can count them.
func (c *Client) RecordClick(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodGet, "/urls/click/"+url.PathEscape(code), nil, false, "", nil)
}

// ListLinks pages through the caller's links.
func (c *Client) ListLinks(ctx context.Context, opts ListLinksOptions) ([]Link, int, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.SortBy != "" {
		q.Set("sort_by", opts.SortBy)
		q.Set("order", map[bool]string{true: "desc", false: "asc"}[opts.Desc])
	}

	path := "/urls"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out listLinksResponse
	if err := c.do(ctx, http.MethodGet, path, nil, true, "", &out); err != nil {
		return nil, 0, err
	}
	return out.Links, out.Total, nil
}

// CreateLink creates a short link. idempotencyKey dedups retried creates
// server-side; empty omits the header. A taken custom alias maps to
// ErrConflict.
func (c *Client) CreateLink(ctx context.Context, req CreateLinkRequest, idempotencyKey string) (*Link, error) {
	var out Link
	if err := c.do(ctx, http.MethodPost, "/urls", req, true, idempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLink updates the mutable fields of a link by ID.
func (c *Client) UpdateLink(ctx context.Context, id string, req UpdateLinkRequest) (*Link, error) {
	var out Link
	if err := c.do(ctx, http.MethodPut, "/urls/"+url.PathEscape(id), req, true, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLink removes a link by ID.
func (c *Client) DeleteLink(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/urls/"+url.PathEscape(id), nil, true, "", nil)
}

// QRDesign fetches the stored QR customization for a link.
func (c *Client) QRDesign(ctx context.Context, linkID string) (*QRDesign, error) {
	var out QRDesign
	if err := c.do(ctx, http.MethodGet, "/qr/"+url.PathEscape(linkID), nil, true, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateQRDesign replaces the QR customization for a link.
func (c *Client) UpdateQRDesign(ctx context.Context, design QRDesign) (*QRDesign, error) {
	var out QRDesign
	if err := c.do(ctx, http.MethodPut, "/qr/"+url.PathEscape(design.LinkID), design, true, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFeedback fetches the feedback board.
func (c *Client) ListFeedback(ctx context.Context) ([]FeedbackPost, error) {
	var out listFeedbackResponse
	if err := c.do(ctx, http.MethodGet, "/feedback", nil, true, "", &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

// SubmitFeedback creates a feedback post.
func (c *Client) SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest) (*FeedbackPost, error) {
	var out FeedbackPost
	if err := c.do(ctx, http.MethodPost, "/feedback", req, true, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Vote toggles the caller's vote on a feedback post and returns the
// server-confirmed count.
func (c *Client) Vote(ctx context.Context, postID string) (*VoteResult, error) {
	var out VoteResult
	if err := c.do(ctx, http.MethodPost, "/feedback/"+url.PathEscape(postID)+"/vote", nil, true, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, idempotencyKey string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if authed {
		if c.tokens == nil {
			return ErrUnauthorized
		}
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return errors.Join(ErrUnauthorized, err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		// Read a bounded slice of the body for diagnostics only.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrMalformedResponse, err)
	}
	return nil
}
