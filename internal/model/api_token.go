package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const apiTokenBytes = 32

// ErrInvalidAPIToken is returned when an API token violates one of its field invariants.
var ErrInvalidAPIToken = errors.New("invalid api token")

// APIToken is a bearer token issued to an API client.
// Only the SHA-256 hash of the token is stored.
type APIToken struct {
	ID         uuid.UUID
	Name       string
	TokenHash  string
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// NewAPIToken generates a random token for the named client.
// The plain token is returned once and never stored.
func NewAPIToken(name string) (*APIToken, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return nil, "", fmt.Errorf("%w: name must be between 1 and %d characters", ErrInvalidAPIToken, MaxNameLength)
	}

	buf := make([]byte, apiTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	plain := hex.EncodeToString(buf)

	return &APIToken{Name: name, TokenHash: HashToken(plain)}, plain, nil
}

// HashToken returns the hex encoded SHA-256 digest stored for a plain token.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// InitMeta initializes the token ID and creation time.
func (t *APIToken) InitMeta() {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
}
