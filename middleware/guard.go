package middleware

import (
	"context"
	"net/http"
	"strings"

	goJWT "github.com/MrEthical07/goJWT"
)

// Mode selects how much of a decode result a guard requires.
type Mode int

const (
	// ModeVerified admits any token that verifies or decrypts.
	ModeVerified Mode = iota
	// ModeStrict additionally rejects tokens with validity violations.
	ModeStrict
)

type decodedContextKey struct{}

// DecodedFromContext returns the decode result stored by a guard.
func DecodedFromContext(ctx context.Context) (*goJWT.DecodeResult, bool) {
	res, ok := ctx.Value(decodedContextKey{}).(*goJWT.DecodeResult)
	return res, ok
}

func Guard(engine *goJWT.Engine, keys goJWT.KeyMaterial, mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.Decode(r.Context(), goJWT.DecodeRequest{Token: token, Keys: keys})
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if mode == ModeStrict && !res.Valid() {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), decodedContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
