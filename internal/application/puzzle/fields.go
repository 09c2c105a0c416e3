package puzzle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-puzzle-api/internal/domain"
	"github.com/go-puzzle-api/internal/pkg/validate"
)

const dateLayout = "2006-01-02"

// Wire names used in validation messages.
const (
	fieldTitle        = "title"
	fieldPieces       = "piecesNumber"
	fieldSizeHeight   = "sizeHeight"
	fieldSizeWidth    = "sizeWidth"
	fieldManufacturer = "manufacturer"
	fieldLastPlayed   = "lastPlayed"
	fieldLocation     = "location"
	fieldComplete     = "complete"
	fieldMissing      = "missingPiecesNumber"
	fieldPrivateNote  = "privateNote"
	fieldSharedNote   = "sharedNote"
	fieldIsPrivate    = "isPrivate"
	fieldIsLentOut    = "isLentOut"
	fieldLentOutTo    = "lentOutToString"
)

// Rule tags per field, evaluated only when the field is present.
var (
	titleRules        = "required,max=100," + validate.TextTag
	piecesRules       = "min=2,max=20000"
	sizeRules         = "min=1,max=100000"
	manufacturerRules = "max=50"
	locationRules     = "max=100," + validate.TextTag
	missingRules      = "min=1"
	noteRules         = "max=1000"
	lentOutToRules    = "required,max=50," + validate.TextTag
)

// Candidate is a fully typed, derived field set ready to be persisted.
type Candidate struct {
	Title               string
	PiecesNumber        *int
	SizeHeight          *int
	SizeWidth           *int
	Manufacturer        string
	LastPlayed          *time.Time
	Location            string
	Complete            bool
	MissingPiecesNumber *int
	PrivateNote         string
	SharedNote          string
	IsPrivate           bool
	IsLentOut           bool
	LentOutToString     string
}

// Check parses in, applies the derived-field rules and validates the result.
// It returns every violated rule in field order; an empty slice means the
// candidate is valid. lastPlayedOffset is added to the submitted calendar date.
func Check(in domain.PuzzleInput, lastPlayedOffset time.Duration) (Candidate, []string) {
	var (
		c    Candidate
		msgs []string
	)
	add := func(msg string) {
		if msg != "" {
			msgs = append(msgs, msg)
		}
	}

	c.Title = strings.TrimSpace(in.Title)
	add(validate.Var(fieldTitle, c.Title, titleRules))

	var piecesOK bool
	c.PiecesNumber, piecesOK = parseInt(fieldPieces, in.PiecesNumber, add)
	if c.PiecesNumber != nil {
		add(validate.Var(fieldPieces, *c.PiecesNumber, piecesRules))
	}

	var heightOK, widthOK bool
	c.SizeHeight, heightOK = parseInt(fieldSizeHeight, in.SizeHeight, add)
	if c.SizeHeight != nil {
		add(validate.Var(fieldSizeHeight, *c.SizeHeight, sizeRules))
	}
	c.SizeWidth, widthOK = parseInt(fieldSizeWidth, in.SizeWidth, add)
	if c.SizeWidth != nil {
		add(validate.Var(fieldSizeWidth, *c.SizeWidth, sizeRules))
	}
	if heightOK && widthOK && (c.SizeHeight == nil) != (c.SizeWidth == nil) {
		add("sizeHeight and sizeWidth must be given together")
	}

	c.Manufacturer = strings.TrimSpace(in.Manufacturer)
	if c.Manufacturer != "" {
		add(validate.Var(fieldManufacturer, c.Manufacturer, manufacturerRules))
	}

	if raw := strings.TrimSpace(in.LastPlayed); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			add(fmt.Sprintf("%s is not a valid date (expected YYYY-MM-DD)", fieldLastPlayed))
		} else {
			d = d.UTC().Add(lastPlayedOffset)
			c.LastPlayed = &d
		}
	}

	c.Location = strings.TrimSpace(in.Location)
	if c.Location != "" {
		add(validate.Var(fieldLocation, c.Location, locationRules))
	}

	complete, _ := parseBool(fieldComplete, in.Complete, add)
	var missingOK bool
	c.MissingPiecesNumber, missingOK = parseInt(fieldMissing, in.MissingPiecesNumber, add)
	switch {
	case c.PiecesNumber == nil:
		// Without a piece count there is nothing to be missing.
		c.Complete = true
		c.MissingPiecesNumber = nil
	case c.MissingPiecesNumber != nil && *c.MissingPiecesNumber > 0:
		c.Complete = false
	case complete != nil:
		c.Complete = *complete
	default:
		c.Complete = true
	}
	if c.MissingPiecesNumber != nil {
		add(validate.Var(fieldMissing, *c.MissingPiecesNumber, missingRules))
		if piecesOK && *c.MissingPiecesNumber >= *c.PiecesNumber {
			add(fmt.Sprintf("%s must be less than %s", fieldMissing, fieldPieces))
		}
	}
	if !c.Complete && c.MissingPiecesNumber == nil && missingOK {
		add(fmt.Sprintf("%s is required when the puzzle is not complete", fieldMissing))
	}

	c.PrivateNote = in.PrivateNote
	if c.PrivateNote != "" {
		add(validate.Var(fieldPrivateNote, c.PrivateNote, noteRules))
	}
	c.SharedNote = in.SharedNote
	if c.SharedNote != "" {
		add(validate.Var(fieldSharedNote, c.SharedNote, noteRules))
	}

	isPrivate, _ := parseBool(fieldIsPrivate, in.IsPrivate, add)
	c.IsPrivate = isPrivate == nil || *isPrivate

	// A borrower name is only kept while the puzzle is actually lent out.
	isLentOut, _ := parseBool(fieldIsLentOut, in.IsLentOut, add)
	c.IsLentOut = isLentOut != nil && *isLentOut
	if c.IsLentOut {
		c.LentOutToString = strings.TrimSpace(in.LentOutToString)
		add(validate.Var(fieldLentOutTo, c.LentOutToString, lentOutToRules))
	}

	return c, msgs
}

// apply copies the candidate's plain fields onto p. The private note is
// handled separately because it must be sealed first.
func (c Candidate) apply(p *domain.Puzzle) {
	p.Title = c.Title
	p.PiecesNumber = c.PiecesNumber
	p.SizeHeight = c.SizeHeight
	p.SizeWidth = c.SizeWidth
	p.Manufacturer = c.Manufacturer
	p.LastPlayed = c.LastPlayed
	p.Location = c.Location
	p.Complete = c.Complete
	p.MissingPiecesNumber = c.MissingPiecesNumber
	p.SharedNote = c.SharedNote
	p.IsPrivate = c.IsPrivate
	p.IsLentOut = c.IsLentOut
	p.LentOutToString = c.LentOutToString
}

// parseInt returns nil for an omitted value. ok is false only when a value
// was supplied but is not an integer; the message is reported through add.
func parseInt(field, raw string, add func(string)) (n *int, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		add(fmt.Sprintf("%s is not a valid number", field))
		return nil, false
	}
	return &v, true
}

// parseBool accepts the values HTML forms and JSON clients send.
func parseBool(field, raw string, add func(string)) (b *bool, ok bool) {
	var v bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return nil, true
	case "true", "on", "1", "yes":
		v = true
	case "false", "off", "0", "no":
		v = false
	default:
		add(fmt.Sprintf("%s is not a valid boolean", field))
		return nil, false
	}
	return &v, true
}
