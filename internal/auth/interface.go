// Package auth verifies the bearer tokens that identify document owners.
package auth

// JWTVerifier validates bearer tokens.
type JWTVerifier interface {
	// VerifyToken validates a token string and returns its claims.
	// Invalid, expired or badly signed tokens return domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
