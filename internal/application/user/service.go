package user

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-puzzle-api/internal/domain"
	"github.com/go-puzzle-api/internal/pkg/id"
	"github.com/go-puzzle-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, req domain.CredentialsRequest) (*domain.User, error)
	RegisterWithToken(ctx context.Context, req domain.CredentialsRequest) (*domain.User, string, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, req domain.CredentialsRequest) (*domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type tokenSigner interface {
	Sign(userID, username string) (string, error)
}

// credentials carries the registration rules; tags are checked by validate.Struct.
type credentials struct {
	Username string `json:"username" validate:"required,max=50,alphanum"`
	Password string `json:"password" validate:"required,min=10,max=2000"`
}

type service struct {
	repo     userStore
	tokens   tokenSigner
	hashCost int

	dummyOnce sync.Once
	dummyHash []byte
}

type ServiceDeps struct {
	UserRepo      userStore
	TokenProvider tokenSigner
	HashCost      int // bcrypt cost; 0 means bcrypt.DefaultCost
}

func NewService(deps ServiceDeps) Service {
	cost := deps.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{repo: deps.UserRepo, tokens: deps.TokenProvider, hashCost: cost}
}

func (s *service) Register(ctx context.Context, req domain.CredentialsRequest) (*domain.User, error) {
	c := credentials{Username: normalizeUsername(req.Username), Password: req.Password}
	msgs, err := validate.Struct(c)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs)
	}

	if _, err := s.repo.GetByUsername(ctx, c.Username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword(prehash(c.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     c.Username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// RegisterWithToken registers the user and signs them in straight away.
func (s *service) RegisterWithToken(ctx context.Context, req domain.CredentialsRequest) (*domain.User, string, error) {
	u, err := s.Register(ctx, req)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Sign(u.UserID, u.Username)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return u, token, nil
}

// Authenticate runs a bcrypt comparison whether or not the user exists, so
// response time does not reveal which usernames are registered.
func (s *service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.repo.GetByUsername(ctx, normalizeUsername(username))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash := s.dummy()
	if u != nil {
		hash = []byte(u.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, prehash(password)) != nil || u == nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req domain.CredentialsRequest) (*domain.User, string, error) {
	u, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Sign(u.UserID, u.Username)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return u, token, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// Delete removes the user record only. Puzzles owned by the user stay.
func (s *service) Delete(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

func (s *service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword(prehash("dummy-password-for-timing"), s.hashCost)
	})
	return s.dummyHash
}

func normalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

// prehash fits passwords of any length into bcrypt's 72-byte input limit.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
