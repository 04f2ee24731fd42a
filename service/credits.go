package service

import (
	"context"
	"errors"

	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/google/uuid"
)

// Credits meters proving requests. Every proving request of a client costs one credit.
type Credits struct {
	clients i.ClientRepo
}

// NewCredits creates a Credits service.
func NewCredits(clients i.ClientRepo) (*Credits, error) {
	if clients == nil {
		return nil, errors.New("credits need a client repo")
	}
	return &Credits{clients: clients}, nil
}

// Consume takes one credit from client. Returns domain.ErrNoCredits when none is left.
func (c *Credits) Consume(ctx context.Context, client uuid.UUID) error {
	return c.clients.ConsumeCredit(ctx, client)
}

// Balance returns the credits left to client.
func (c *Credits) Balance(ctx context.Context, client uuid.UUID) (int, error) {
	found, err := c.clients.ByID(ctx, client)
	if err != nil {
		return 0, err
	}
	return found.Credits, nil
}
