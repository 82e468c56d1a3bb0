package middleware

import (
	"net/http"
	"strings"
)

// RequireJSON answers 415 in the JSON error envelope when a request carries a
// body whose Content-Type is not listed in allowed. Requests without a body
// pass through, matching chi's AllowContentType.
func RequireJSON(allowed ...string) func(http.Handler) http.Handler {
	types := make(map[string]struct{}, len(allowed))
	for _, t := range allowed {
		types[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	if len(types) == 0 {
		types["application/json"] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			ct, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
			if _, ok := types[strings.ToLower(strings.TrimSpace(ct))]; !ok {
				writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
