package middleware

import (
	"net"
	"net/http"
	"strings"

	cylink "github.com/cylink-sh/cylink-go"
	"github.com/google/uuid"
)

// VisitorCookieName is the cookie that carries the anonymous visitor ID
// used for click dedup.
const VisitorCookieName = "cy_vid"

// visitorCookieMaxAge keeps the ID stable well past any dedup window.
const visitorCookieMaxAge = 365 * 24 * 60 * 60

// Visitor assigns a visitor ID cookie when the request carries none and
// loads visitor identity, client IP, and referrer into the request context
// for Engine.Resolve to pick up.
func Visitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitorID := visitorIDFrom(r)
		if visitorID == "" {
			visitorID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookieName,
				Value:    visitorID,
				Path:     "/",
				MaxAge:   visitorCookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := cylink.WithVisitorID(r.Context(), visitorID)
		ctx = cylink.WithClientIP(ctx, clientIP(r))
		if ref := r.Referer(); ref != "" {
			ctx = cylink.WithReferrer(ctx, ref)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func visitorIDFrom(r *http.Request) string {
	c, err := r.Cookie(VisitorCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
