package socket_io

import (
	"errors"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(raw string) (uint, error)
}

var ErrMalformedAuth = errors.New("malformed auth data")

// VerifyUserConnection reads the "authorization" field of the handshake
// auth data. Connections without it are anonymous (user 0); a token that
// does not verify is an error.
func VerifyUserConnection(auth interface{}, tokens TokenVerifier) (uint, error) {
	if auth == nil {
		return 0, nil
	}
	authData, ok := auth.(map[string]interface{})
	if !ok {
		return 0, ErrMalformedAuth
	}
	raw, exists := authData["authorization"]
	if !exists {
		return 0, nil
	}
	token, ok := raw.(string)
	if !ok {
		return 0, ErrMalformedAuth
	}
	return tokens.Verify(token)
}
