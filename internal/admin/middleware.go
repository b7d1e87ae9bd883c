package admin

import (
	"crypto/subtle"
	"net/http"

	"github.com/nurox-platform/nurox/internal/api"
)

// Middleware guards admin routes with HTTP basic auth against configured
// credentials. Comparison is constant time.
func Middleware(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !credentialsMatch(user, pass, username, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="nurox admin"`)
				api.HandleError(w, api.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func credentialsMatch(gotUser, gotPass, wantUser, wantPass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(gotUser), []byte(wantUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(gotPass), []byte(wantPass)) == 1
	return userOK && passOK
}
