package service

import (
	"context"
	"errors"
	"time"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/google/uuid"
)

const (
	defaultTokenTTL = 24 * time.Hour

	ClaimClientID = "clientID"
	ClaimName     = "name"
)

var _ i.Authenticator = &Auth{}

// Auth registers API clients and issues their access tokens.
type Auth struct {
	clients       i.ClientRepo
	tokenizer     i.Tokenizer
	signupCredits int
	tokenTTL      time.Duration
}

// AuthConfig holds the dependencies of Auth.
type AuthConfig struct {
	Clients       i.ClientRepo
	Tokenizer     i.Tokenizer
	SignupCredits int           // Credits granted on registration.
	TokenTTL      time.Duration // 24h when zero.
}

// NewAuth creates an Auth service.
func NewAuth(c AuthConfig) (*Auth, error) {
	if c.Clients == nil || c.Tokenizer == nil {
		return nil, errors.New("auth needs a client repo and a tokenizer")
	}
	if c.SignupCredits < 0 {
		return nil, dmn.ErrInvalidCredit
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = defaultTokenTTL
	}
	return &Auth{
		clients:       c.Clients,
		tokenizer:     c.Tokenizer,
		signupCredits: c.SignupCredits,
		tokenTTL:      c.TokenTTL,
	}, nil
}

// Register creates a client holding the signup credits.
func (a *Auth) Register(ctx context.Context, name, password string) (*dmn.Client, error) {
	client, err := dmn.NewClient(dmn.ClientConfig{
		ID:            uuid.New(),
		Name:          name,
		PlainPassword: password,
		Credits:       a.signupCredits,
	})
	if err != nil {
		return nil, err
	}

	if err := a.clients.Save(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// SignIn checks the credentials and returns the client with a fresh token.
func (a *Auth) SignIn(ctx context.Context, name, password string) (*dmn.Client, string, error) {
	client, err := a.clients.ByName(ctx, name)
	if err != nil {
		if errors.Is(err, dmn.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !client.VerifyPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.tokenizer.Generate(map[string]any{
		ClaimClientID: client.ID.String(),
		ClaimName:     client.Name,
	}, a.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return client, token, nil
}
