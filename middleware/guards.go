package middleware

import (
	"context"
	"log"
	"net/http"

	"homedish/apperr"
	"homedish/globals"
	"homedish/models"
	"homedish/utils"

	"github.com/julienschmidt/httprouter"
)

// AccountFinder loads live account state. Guards never trust the role in the token.
type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

// RequireAdmin admits only accounts whose current role is admin.
func RequireAdmin(accounts AccountFinder) Middleware {
	return guard(accounts, func(a *models.Account) error {
		if a.Role != models.RoleAdmin {
			return apperr.Forbidden("admin access required")
		}
		return nil
	})
}

// RequireChef admits only chefs that are not flagged for fraud.
func RequireChef(accounts AccountFinder) Middleware {
	return guard(accounts, func(a *models.Account) error {
		if a.Role != models.RoleChef {
			return apperr.Forbidden("chef access required")
		}
		if a.IsFraud() {
			return apperr.Forbidden("account is flagged for fraud")
		}
		return nil
	})
}

func guard(accounts AccountFinder, check func(*models.Account) error) Middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			email := utils.GetEmailFromRequest(r)
			if email == "" {
				utils.WriteError(w, apperr.Unauthorized("unauthorized access"))
				return
			}

			account, err := accounts.FindByEmail(r.Context(), email)
			if err != nil {
				utils.WriteError(w, err)
				return
			}
			if err := check(account); err != nil {
				log.Printf("guard: %s denied on %s %s: %v", email, r.Method, r.URL.Path, err)
				utils.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), globals.AccountKey, account)
			if account.ChefID != "" {
				ctx = context.WithValue(ctx, globals.ChefIDKey, account.ChefID)
			}
			next(w, r.WithContext(ctx), ps)
		}
	}
}

// AccountFrom returns the account loaded by a guard.
func AccountFrom(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(globals.AccountKey).(*models.Account)
	return a, ok && a != nil
}

// ChefIDFrom returns the chef identifier attached by RequireChef.
func ChefIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(globals.ChefIDKey).(string)
	return id
}
