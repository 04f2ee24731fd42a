package i

import (
	"context"
	"time"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
)

// Authenticator registers API clients and signs them in.
type Authenticator interface {
	Register(ctx context.Context, name, password string) (*dmn.Client, error)
	SignIn(ctx context.Context, name, password string) (*dmn.Client, string, error)
}

// Tokenizer issues and checks signed access tokens.
type Tokenizer interface {
	// Generate creates a token carrying claims that expires after ttl.
	Generate(claims map[string]any, ttl time.Duration) (string, error)

	// Decode validates a token and returns its claims.
	Decode(token string) (map[string]any, error)
}
