package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cylink-sh/cylink-go/token"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens token.Source) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, Tokens: tokens})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "/v1"}); err == nil {
		t.Fatal("expected error for relative base URL")
	}
}

func TestLookupPublicSendsNoCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("public lookup sent Authorization header")
		}
		if r.URL.Path != "/urls/abc123" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"original_url": "https://example.com/"})
	}, token.Static("should-not-be-sent"))

	dest, err := client.LookupPublic(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("LookupPublic failed: %v", err)
	}
	if dest != "https://example.com/" {
		t.Fatalf("dest = %q", dest)
	}
}

func TestLookupAuthenticatedSendsBearer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"original_url": "https://example.com/"})
	}, token.Static("secret"))

	if _, err := client.LookupAuthenticated(context.Background(), "abc123"); err != nil {
		t.Fatalf("LookupAuthenticated failed: %v", err)
	}
}

func TestLookupAuthenticatedWithoutTokenSource(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached the server without credentials")
	}, nil)

	if _, err := client.LookupAuthenticated(context.Background(), "abc123"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusConflict, ErrConflict},
	}
	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}, token.Static("tok"))

		_, err := client.LookupAuthenticated(context.Background(), "abc123")
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d mapped to %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestUnexpectedStatusCarriesBodySnippet(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}, token.Static("tok"))

	_, err := client.LookupPublic(context.Background(), "abc123")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusBadGateway {
		t.Fatalf("Code = %d", statusErr.Code)
	}
	if statusErr.Body != "upstream exploded" {
		t.Fatalf("Body = %q", statusErr.Body)
	}
}

func TestLookupRejectsEmptyOriginalURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}, nil)

	if _, err := client.LookupPublic(context.Background(), "abc123"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestRecordClickIsUnauthenticated(t *testing.T) {
	var gotPath, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}, token.Static("tok"))

	if err := client.RecordClick(context.Background(), "abc123"); err != nil {
		t.Fatalf("RecordClick failed: %v", err)
	}
	if gotPath != "/urls/click/abc123" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "" {
		t.Fatal("click call sent credentials")
	}
}

func TestCreateLinkSendsIdempotencyKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Idempotency-Key"); got != "key-1" {
			t.Errorf("Idempotency-Key = %q", got)
		}
		var req CreateLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.OriginalURL != "https://example.com/long" {
			t.Errorf("OriginalURL = %q", req.OriginalURL)
		}
		_ = json.NewEncoder(w).Encode(Link{ID: "lnk_1", ShortCode: "abc123", OriginalURL: req.OriginalURL})
	}, token.Static("tok"))

	link, err := client.CreateLink(context.Background(), CreateLinkRequest{OriginalURL: "https://example.com/long"}, "key-1")
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if link.ID != "lnk_1" || link.ShortCode != "abc123" {
		t.Fatalf("link = %+v", link)
	}
}

func TestListLinksQueryParameters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("per_page") != "25" {
			t.Errorf("pagination query = %v", q)
		}
		if q.Get("sort_by") != "clicks" || q.Get("order") != "desc" {
			t.Errorf("sort query = %v", q)
		}
		_ = json.NewEncoder(w).Encode(listLinksResponse{
			Links: []Link{{ID: "lnk_1"}, {ID: "lnk_2"}},
			Total: 41,
		})
	}, token.Static("tok"))

	links, total, err := client.ListLinks(context.Background(), ListLinksOptions{
		Page: 2, PerPage: 25, SortBy: "clicks", Desc: true,
	})
	if err != nil {
		t.Fatalf("ListLinks failed: %v", err)
	}
	if len(links) != 2 || total != 41 {
		t.Fatalf("got %d links, total %d", len(links), total)
	}
}

func TestVote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/feedback/fb_1/vote" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(VoteResult{PostID: "fb_1", Votes: 12, HasVoted: true})
	}, token.Static("tok"))

	res, err := client.Vote(context.Background(), "fb_1")
	if err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if res.Votes != 12 || !res.HasVoted {
		t.Fatalf("result = %+v", res)
	}
}

func TestContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.LookupPublic(ctx, "abc123"); !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}
