package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT claim set issued by Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type Claims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	AppMetadata  map[string]any `json:"app_metadata"`
	UserMetadata map[string]any `json:"user_metadata"`
	Role         string         `json:"role"` // "authenticated" or "anon"
	AAL          string         `json:"aal"`
	SessionID    string         `json:"session_id"`
	IsAnonymous  bool           `json:"is_anonymous"`
}

// UserID returns the subject claim, which owns documents.
func (c *Claims) UserID() string {
	return c.Subject
}
