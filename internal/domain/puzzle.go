package domain

import "time"

// Puzzle is the stored document. PrivateNote holds the cipher envelope, never plaintext.
// Image bytes live in the blob store under ImageKey and are only loaded on demand.
type Puzzle struct {
	PuzzleID            string     `json:"id" dynamodbav:"puzzle_id"`
	OwnerID             string     `json:"owner" dynamodbav:"owner_id"`
	Title               string     `json:"title" dynamodbav:"title"`
	PiecesNumber        *int       `json:"piecesNumber,omitempty" dynamodbav:"pieces_number,omitempty"`
	SizeHeight          *int       `json:"sizeHeight,omitempty" dynamodbav:"size_height,omitempty"`
	SizeWidth           *int       `json:"sizeWidth,omitempty" dynamodbav:"size_width,omitempty"`
	Manufacturer        string     `json:"manufacturer,omitempty" dynamodbav:"manufacturer,omitempty"`
	LastPlayed          *time.Time `json:"lastPlayed,omitempty" dynamodbav:"last_played,omitempty"`
	Location            string     `json:"location,omitempty" dynamodbav:"location,omitempty"`
	Complete            bool       `json:"complete" dynamodbav:"complete"`
	MissingPiecesNumber *int       `json:"missingPiecesNumber,omitempty" dynamodbav:"missing_pieces_number,omitempty"`
	PrivateNote         string     `json:"-" dynamodbav:"private_note,omitempty"`
	SharedNote          string     `json:"sharedNote,omitempty" dynamodbav:"shared_note,omitempty"`
	IsPrivate           bool       `json:"isPrivate" dynamodbav:"is_private"`
	IsLentOut           bool       `json:"isLentOut" dynamodbav:"is_lent_out"`
	LentOutToString     string     `json:"lentOutToString,omitempty" dynamodbav:"lent_out_to,omitempty"`
	ImageKey            string     `json:"-" dynamodbav:"image_key,omitempty"`
	Image               []byte     `json:"-" dynamodbav:"-"`
	CreatedAt           time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

// HasImage reports whether an image blob is attached to the record.
func (p *Puzzle) HasImage() bool { return p.ImageKey != "" }

// PuzzleInput is the raw create/update field set as submitted by a client.
// Numbers, booleans and the date arrive as strings; empty means omitted.
type PuzzleInput struct {
	Title               string
	PiecesNumber        string
	SizeHeight          string
	SizeWidth           string
	Manufacturer        string
	LastPlayed          string // YYYY-MM-DD
	Location            string
	Complete            string
	MissingPiecesNumber string
	PrivateNote         string
	SharedNote          string
	IsPrivate           string
	IsLentOut           string
	LentOutToString     string
	Image               []byte // nil when no file was uploaded
}

// PuzzleView is the outbound representation of a record.
type PuzzleView struct {
	ID                  string     `json:"id"`
	Owner               string     `json:"owner,omitempty"`
	Title               string     `json:"title"`
	PiecesNumber        *int       `json:"piecesNumber,omitempty"`
	SizeHeight          *int       `json:"sizeHeight,omitempty"`
	SizeWidth           *int       `json:"sizeWidth,omitempty"`
	Manufacturer        string     `json:"manufacturer,omitempty"`
	LastPlayed          string     `json:"lastPlayed,omitempty"` // YYYY-MM-DD
	Location            string     `json:"location,omitempty"`
	Complete            bool       `json:"complete"`
	MissingPiecesNumber *int       `json:"missingPiecesNumber,omitempty"`
	PrivateNote         string     `json:"privateNote,omitempty"`
	SharedNote          string     `json:"sharedNote,omitempty"`
	IsPrivate           bool       `json:"isPrivate"`
	IsLentOut           bool       `json:"isLentOut"`
	LentOutToString     string     `json:"lentOutToString,omitempty"`
	ImageURL            string     `json:"imageUrl,omitempty"`
	CreatedAt           *time.Time `json:"createdAt,omitempty"`
	UpdatedAt           *time.Time `json:"updatedAt,omitempty"`
}

// PuzzleEventType names a lifecycle transition.
type PuzzleEventType string

const (
	PuzzleCreated PuzzleEventType = "puzzle.created"
	PuzzleUpdated PuzzleEventType = "puzzle.updated"
	PuzzleDeleted PuzzleEventType = "puzzle.deleted"
)

// PuzzleEvent is published after a lifecycle transition has been persisted.
type PuzzleEvent struct {
	Type     PuzzleEventType `json:"type"`
	PuzzleID string          `json:"puzzle_id"`
	OwnerID  string          `json:"owner_id"`
	At       time.Time       `json:"at"`
}
