package dynamo

// Attribute and index names shared by repos and Bootstrap.
const (
	attrUserID   = "user_id"
	attrUsername = "username"

	attrPuzzleID  = "puzzle_id"
	attrOwnerID   = "owner_id"
	attrCreatedAt = "created_at"
	attrUpdatedAt = "updated_at"

	indexUsername = "username-index"
	indexOwner    = "owner_id-index"
)

// listedPuzzleAttrs is what ListByOwner reads back: every stored puzzle
// attribute except the owner and bookkeeping timestamps.
var listedPuzzleAttrs = []string{
	attrPuzzleID,
	"title",
	"pieces_number",
	"size_height",
	"size_width",
	"manufacturer",
	"last_played",
	"location",
	"complete",
	"missing_pieces_number",
	"private_note",
	"shared_note",
	"is_private",
	"is_lent_out",
	"lent_out_to",
	"image_key",
}
