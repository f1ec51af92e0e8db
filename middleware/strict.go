package middleware

import (
	"net/http"

	goJWT "github.com/MrEthical07/goJWT"
)

// RequireVerified admits requests whose bearer token verifies or decrypts with keys,
// whatever its claims say about time or audience.
func RequireVerified(engine *goJWT.Engine, keys goJWT.KeyMaterial) func(http.Handler) http.Handler {
	return Guard(engine, keys, ModeVerified)
}

func RequireStrict(engine *goJWT.Engine, keys goJWT.KeyMaterial) func(http.Handler) http.Handler {
	return Guard(engine, keys, ModeStrict)
}
