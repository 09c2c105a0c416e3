package puzzle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-puzzle-api/internal/domain"
	"github.com/go-puzzle-api/internal/pkg/id"
	"github.com/go-puzzle-api/internal/pkg/imagenorm"
)

type Service interface {
	Create(ctx context.Context, in domain.PuzzleInput, ownerID string) (string, error)
	Read(ctx context.Context, puzzleID, callerID string) (*domain.PuzzleView, error)
	ReadAll(ctx context.Context, ownerID string) ([]domain.PuzzleView, error)
	Update(ctx context.Context, puzzleID string, in domain.PuzzleInput, callerID string) error
	Delete(ctx context.Context, puzzleID, callerID string) error
}

type puzzleStore interface {
	// ListByOwner returns the owner's records without owner and timestamp fields.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Puzzle, error)
	Get(ctx context.Context, puzzleID string) (*domain.Puzzle, error)
	// Put inserts a new record and fails with domain.ErrConflict if the id exists.
	Put(ctx context.Context, p *domain.Puzzle) error
	// Replace overwrites an existing record and fails with domain.ErrNotFound if it is gone.
	Replace(ctx context.Context, p *domain.Puzzle) error
	Delete(ctx context.Context, puzzleID string) error
}

type imageStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type noteCipher interface {
	EncryptString(plaintext string) (string, error)
	DecryptString(envelope string) (string, error)
}

type imageNormalizer interface {
	Normalize(ctx context.Context, raw []byte) ([]byte, error)
}

// EventPublisher delivers lifecycle events after they have been persisted.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.PuzzleEvent) error
}

type service struct {
	repo             puzzleStore
	images           imageStore
	cipher           noteCipher
	normalizer       imageNormalizer
	events           EventPublisher
	authz            Authorizer
	lastPlayedOffset time.Duration
	now              func() time.Time
}

type ServiceDeps struct {
	PuzzleRepo       puzzleStore
	ImageStore       imageStore
	Cipher           noteCipher
	Normalizer       imageNormalizer
	Events           EventPublisher // optional
	Authorizer       Authorizer     // optional, defaults to OwnerAuthorizer
	LastPlayedOffset time.Duration
	Now              func() time.Time // optional, for tests
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:             deps.PuzzleRepo,
		images:           deps.ImageStore,
		cipher:           deps.Cipher,
		normalizer:       deps.Normalizer,
		events:           deps.Events,
		authz:            deps.Authorizer,
		lastPlayedOffset: deps.LastPlayedOffset,
		now:              deps.Now,
	}
	if s.authz == nil {
		s.authz = OwnerAuthorizer{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Create(ctx context.Context, in domain.PuzzleInput, ownerID string) (puzzleID string, err error) {
	defer func() { observe(opCreate, err) }()

	c, msgs := Check(in, s.lastPlayedOffset)
	if len(msgs) > 0 {
		return "", domain.NewValidationError(msgs)
	}
	img, err := s.normalizer.Normalize(ctx, in.Image)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	p := &domain.Puzzle{
		PuzzleID:  id.New(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.fill(p, c); err != nil {
		return "", err
	}
	if img != nil {
		p.ImageKey = imageKey(p.PuzzleID)
		if err := s.images.Put(ctx, p.ImageKey, img); err != nil {
			return "", fmt.Errorf("store image: %w", err)
		}
	}
	if err := s.repo.Put(ctx, p); err != nil {
		s.dropImage(ctx, p.ImageKey)
		return "", err
	}

	s.publish(ctx, domain.PuzzleCreated, p)
	return p.PuzzleID, nil
}

func (s *service) Read(ctx context.Context, puzzleID, callerID string) (v *domain.PuzzleView, err error) {
	defer func() { observe(opRead, err) }()

	p, err := s.load(ctx, puzzleID)
	if err != nil {
		return nil, err
	}
	owner := p.OwnerID == callerID
	if p.IsPrivate && !owner {
		if err := s.authz.AuthorizeOwner(ctx, p, callerID); err != nil {
			return nil, err
		}
	}

	v = toView(p, s.lastPlayedOffset)
	v.Owner = p.OwnerID
	v.CreatedAt = &p.CreatedAt
	v.UpdatedAt = &p.UpdatedAt
	if owner {
		if v.PrivateNote, err = s.openNote(p.PrivateNote); err != nil {
			return nil, err
		}
	}
	if v.ImageURL, err = s.imageURL(ctx, p, true); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) ReadAll(ctx context.Context, ownerID string) (views []domain.PuzzleView, err error) {
	defer func() { observe(opReadAll, err) }()

	list, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	// ids are ULIDs, so this is creation order
	sort.Slice(list, func(i, j int) bool { return list[i].PuzzleID < list[j].PuzzleID })

	views = make([]domain.PuzzleView, 0, len(list))
	for i := range list {
		p := &list[i]
		v := toView(p, s.lastPlayedOffset)
		if v.PrivateNote, err = s.openNote(p.PrivateNote); err != nil {
			return nil, err
		}
		if v.ImageURL, err = s.imageURL(ctx, p, false); err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, puzzleID string, in domain.PuzzleInput, callerID string) (err error) {
	defer func() { observe(opUpdate, err) }()

	existing, err := s.load(ctx, puzzleID)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeOwner(ctx, existing, callerID); err != nil {
		return err
	}

	c, msgs := Check(in, s.lastPlayedOffset)
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs)
	}
	img, err := s.normalizer.Normalize(ctx, in.Image)
	if err != nil {
		return err
	}

	next := &domain.Puzzle{
		PuzzleID:  existing.PuzzleID,
		OwnerID:   existing.OwnerID,
		ImageKey:  existing.ImageKey,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.fill(next, c); err != nil {
		return err
	}
	if img != nil {
		next.ImageKey = imageKey(next.PuzzleID)
		if err := s.images.Put(ctx, next.ImageKey, img); err != nil {
			return fmt.Errorf("store image: %w", err)
		}
	}
	if err := s.repo.Replace(ctx, next); err != nil {
		if next.ImageKey != existing.ImageKey {
			s.dropImage(ctx, next.ImageKey)
		}
		return err
	}
	if next.ImageKey != existing.ImageKey {
		s.dropImage(ctx, existing.ImageKey)
	}

	s.publish(ctx, domain.PuzzleUpdated, next)
	return nil
}

func (s *service) Delete(ctx context.Context, puzzleID, callerID string) (err error) {
	defer func() { observe(opDelete, err) }()

	p, err := s.load(ctx, puzzleID)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeOwner(ctx, p, callerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.PuzzleID); err != nil {
		return err
	}
	s.dropImage(ctx, p.ImageKey)

	s.publish(ctx, domain.PuzzleDeleted, p)
	return nil
}

// load rejects malformed ids before touching the store.
func (s *service) load(ctx context.Context, puzzleID string) (*domain.Puzzle, error) {
	if !id.Valid(puzzleID) {
		return nil, fmt.Errorf("puzzle id %q: %w", puzzleID, domain.ErrInvalidIdentifier)
	}
	return s.repo.Get(ctx, puzzleID)
}

// fill copies c onto p and seals the private note.
func (s *service) fill(p *domain.Puzzle, c Candidate) error {
	c.apply(p)
	p.PrivateNote = ""
	if c.PrivateNote == "" {
		return nil
	}
	env, err := s.cipher.EncryptString(c.PrivateNote)
	if err != nil {
		return fmt.Errorf("encrypt private note: %w", err)
	}
	p.PrivateNote = env
	return nil
}

func (s *service) openNote(envelope string) (string, error) {
	if envelope == "" {
		return "", nil
	}
	return s.cipher.DecryptString(envelope)
}

// imageURL inlines the stored image. withPlaceholder controls what a record
// without an image gets: the placeholder on single reads, nothing in listings.
func (s *service) imageURL(ctx context.Context, p *domain.Puzzle, withPlaceholder bool) (string, error) {
	if !p.HasImage() {
		if withPlaceholder {
			return imagenorm.PlaceholderURI(), nil
		}
		return "", nil
	}
	data, err := s.images.Get(ctx, p.ImageKey)
	if errors.Is(err, domain.ErrNotFound) {
		slog.WarnContext(ctx, "puzzle image missing from blob store", "puzzle_id", p.PuzzleID, "image_key", p.ImageKey)
		if withPlaceholder {
			return imagenorm.PlaceholderURI(), nil
		}
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}
	return imagenorm.DataURI(data), nil
}

func (s *service) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to delete puzzle image", "image_key", key, "error", err)
	}
}

func (s *service) publish(ctx context.Context, t domain.PuzzleEventType, p *domain.Puzzle) {
	if s.events == nil {
		return
	}
	e := domain.PuzzleEvent{Type: t, PuzzleID: p.PuzzleID, OwnerID: p.OwnerID, At: s.now().UTC()}
	if err := s.events.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "failed to publish puzzle event", "type", string(t), "puzzle_id", p.PuzzleID, "error", err)
	}
}

// imageKey is unique per upload so a replaced image is never overwritten
// before the record pointing at it has been updated.
func imageKey(puzzleID string) string {
	return "puzzles/" + puzzleID + "/" + id.New() + ".jpg"
}

// toView renders lastPlayed back as the submitted calendar date by removing
// the offset Check added to it.
func toView(p *domain.Puzzle, lastPlayedOffset time.Duration) *domain.PuzzleView {
	v := &domain.PuzzleView{
		ID:                  p.PuzzleID,
		Title:               p.Title,
		PiecesNumber:        p.PiecesNumber,
		SizeHeight:          p.SizeHeight,
		SizeWidth:           p.SizeWidth,
		Manufacturer:        p.Manufacturer,
		Location:            p.Location,
		Complete:            p.Complete,
		MissingPiecesNumber: p.MissingPiecesNumber,
		SharedNote:          p.SharedNote,
		IsPrivate:           p.IsPrivate,
		IsLentOut:           p.IsLentOut,
		LentOutToString:     p.LentOutToString,
	}
	if p.LastPlayed != nil {
		v.LastPlayed = p.LastPlayed.Add(-lastPlayedOffset).UTC().Format(dateLayout)
	}
	return v
}
