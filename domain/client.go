package domain

import (
	"errors"
	"regexp"

	"github.com/google/uuid"
	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordStrengthScore = 3

	namePattern   = `^[a-zA-Z0-9_]+$` // Alphanumeric with underscores
	minNameLength = 3
	maxNameLength = 20

	passwordHashCost = 12
)

var (
	nameRegex = regexp.MustCompile(namePattern)

	ErrNameTooShort  = errors.New("name too short")
	ErrNameTooLong   = errors.New("name too long")
	ErrInvalidName   = errors.New("invalid name format")
	ErrWeakPassword  = errors.New("weak password")
	ErrNoCredits     = errors.New("no proving credits left")
	ErrInvalidCredit = errors.New("credits must not be negative")
)

// Client is an API caller. Every metered proving request consumes one credit.
type Client struct {
	ID           uuid.UUID `bson:"_id"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"passwordHash"`
	Credits      int       `bson:"credits"`
}

// ClientConfig holds parameters for creating a Client.
type ClientConfig struct {
	ID            uuid.UUID
	Name          string
	PlainPassword string
	Credits       int
}

// NewClient validates the configuration and hashes the password.
func NewClient(config ClientConfig) (*Client, error) {
	if err := validateName(config.Name); err != nil {
		return nil, err
	}
	if err := validatePassword(config.PlainPassword); err != nil {
		return nil, err
	}
	if config.Credits < 0 {
		return nil, ErrInvalidCredit
	}

	passwordHash, err := hashPassword(config.PlainPassword)
	if err != nil {
		return nil, err
	}

	return &Client{
		ID:           config.ID,
		Name:         config.Name,
		PasswordHash: passwordHash,
		Credits:      config.Credits,
	}, nil
}

// VerifyPassword verifies if the given password matches the stored hash.
func (c *Client) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
	return err == nil
}

// ConsumeCredit takes one credit.
func (c *Client) ConsumeCredit() error {
	if c.Credits <= 0 {
		return ErrNoCredits
	}
	c.Credits--
	return nil
}

func validateName(name string) error {
	if len(name) < minNameLength {
		return ErrNameTooShort
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	if !nameRegex.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// validatePassword checks the strength of the password.
func validatePassword(password string) error {
	result := zxcvbn.PasswordStrength(password, nil)
	if result.Score < minPasswordStrengthScore {
		return ErrWeakPassword
	}
	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	return string(bytes), err
}
