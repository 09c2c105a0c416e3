package puzzle

import (
	"context"
	"fmt"

	"github.com/go-puzzle-api/internal/domain"
)

// Authorizer decides whether callerID may modify p.
type Authorizer interface {
	AuthorizeOwner(ctx context.Context, p *domain.Puzzle, callerID string) error
}

// OwnerAuthorizer allows only the record's owner.
type OwnerAuthorizer struct{}

func (OwnerAuthorizer) AuthorizeOwner(_ context.Context, p *domain.Puzzle, callerID string) error {
	if callerID == "" || p.OwnerID != callerID {
		return fmt.Errorf("puzzle %s: %w", p.PuzzleID, domain.ErrForbidden)
	}
	return nil
}
