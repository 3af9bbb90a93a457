package middleware

import (
	"context"
	"net/http"
	"strings"

	"homedish/apperr"
	"homedish/auth"
	"homedish/globals"
	"homedish/utils"

	"github.com/julienschmidt/httprouter"
)

// Middleware wraps an httprouter handle.
type Middleware func(httprouter.Handle) httprouter.Handle

// Chain applies mws so that the first one runs outermost.
func Chain(mws ...Middleware) Middleware {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticate resolves the session from the token cookie or, failing that,
// the bearer header, and attaches the claims to the request context.
func Authenticate(parser TokenParser) Middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			token := tokenFromRequest(r)
			if token == "" {
				utils.WriteError(w, apperr.Unauthorized("unauthorized access"))
				return
			}

			claims, err := parser.Parse(token)
			if err != nil {
				utils.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), globals.ClaimsKey, claims)
			ctx = context.WithValue(ctx, globals.EmailKey, claims.Email)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// ClaimsFrom returns the claims attached by Authenticate.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(globals.ClaimsKey).(*auth.Claims)
	return c, ok && c != nil
}
