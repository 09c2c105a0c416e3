package http

import (
	"context"

	"github.com/go-puzzle-api/internal/application/puzzle"
	"github.com/go-puzzle-api/internal/domain"
	jwtinfra "github.com/go-puzzle-api/internal/infrastructure/jwt"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

// PuzzleRepository is the minimal interface the router requires from a puzzle store.
type PuzzleRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Puzzle, error)
	Get(ctx context.Context, puzzleID string) (*domain.Puzzle, error)
	Put(ctx context.Context, p *domain.Puzzle) error
	Replace(ctx context.Context, p *domain.Puzzle) error
	Delete(ctx context.Context, puzzleID string) error
}

// ImageStore is the blob backend holding normalized puzzle images.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type NoteCipher interface {
	EncryptString(plaintext string) (string, error)
	DecryptString(envelope string) (string, error)
}

type ImageNormalizer interface {
	Normalize(ctx context.Context, raw []byte) ([]byte, error)
	MaxBytes() int64
}

// TokenProvider signs and verifies bearer tokens.
type TokenProvider interface {
	Sign(userID, username string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	PuzzleRepo  PuzzleRepository
	ImageStore  ImageStore
	Events      puzzle.EventPublisher
	Cipher      NoteCipher
	Normalizer  ImageNormalizer
	JWTProvider TokenProvider
}
