package identity

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// Header names trusted when development headers are enabled.
const (
	HeaderUserID = "X-User-Id"
	HeaderRole   = "X-User-Role"
)

// Authenticate resolves the caller of each request and stores it on the
// request context. Requests without credentials pass through anonymously; the
// engines reject them where a caller is required. A present but invalid token
// is rejected with 401.
func Authenticate(v *Verifier, trustDevHeaders bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); auth != "" {
				token, ok := strings.CutPrefix(auth, "Bearer ")
				if !ok || v == nil {
					writeUnauthorized(w, "unsupported authorization scheme")
					return
				}
				id, err := v.Verify(token)
				if err != nil {
					writeUnauthorized(w, err.Error())
					return
				}
				r = r.WithContext(WithIdentity(r.Context(), id))
			} else if trustDevHeaders && r.Header.Get(HeaderUserID) != "" {
				role, err := parseRole(r.Header.Get(HeaderRole))
				if err != nil {
					writeUnauthorized(w, err.Error())
					return
				}
				id := Identity{UserID: r.Header.Get(HeaderUserID), Role: role}
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"kind":    models.KindUnauthorized,
			"message": message,
		},
	})
}
