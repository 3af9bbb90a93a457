package globals

// Context keys
type ContextKey string

const (
	ClaimsKey  ContextKey = "claims"
	EmailKey   ContextKey = "email"
	AccountKey ContextKey = "account"
	ChefIDKey  ContextKey = "chefId"
)
