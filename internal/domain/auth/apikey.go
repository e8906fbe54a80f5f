package auth

import "context"

// APIKeyInfo holds the identity and permission data for a validated API key.
// UserID is the customer account the key acts on behalf of; the security
// middleware resolves it before any domain call, so checkout only ever
// receives an already-authenticated user id.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	UserID  string
	Scopes  []string
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
