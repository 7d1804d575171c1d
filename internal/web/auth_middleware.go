package web

import (
	"context"
	"net/http"

	"github.com/marloe/showbill/internal/domain"
)

type authContextKey string

const contextKeyAuth authContextKey = "showbill-auth-info"

type authInfo struct {
	User  domain.User
	Token string
}

// requireAuth gates a handler behind a valid session. Without one the request
// is redirected to the login page and the handler is never invoked.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token, err := r.cookies.TokenFromRequest(req)
		if err != nil {
			http.Redirect(w, req, "/login", http.StatusSeeOther)
			return
		}
		user, err := r.auth.Authorize(req.Context(), token)
		if err != nil {
			r.logger.Warn("session validation failed", "error", err, "path", req.URL.Path)
			http.Redirect(w, req, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(req.Context(), contextKeyAuth, authInfo{User: *user, Token: token})
		next(w, req.WithContext(ctx))
	}
}

// authInfoFromContext extracts the resolved user and token from context.
func authInfoFromContext(ctx context.Context) (authInfo, bool) {
	value := ctx.Value(contextKeyAuth)
	if value == nil {
		return authInfo{}, false
	}
	info, ok := value.(authInfo)
	return info, ok
}
