package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVar_TextTag(t *testing.T) {
	tag := "max=100," + TextTag
	assert.Empty(t, Var("title", "Puzzle-1: A,B;C!", tag))
	assert.Empty(t, Var("title", "Blåbærsyltetøy på Æsøy", tag))
	assert.Empty(t, Var("title", "Crème brûlée, Ñandú", tag))
	assert.Equal(t, "title may only contain letters, digits, spaces and -.,:;!", Var("title", "Puzzle #1!", tag))
	assert.NotEmpty(t, Var("title", "a/b", tag))
	assert.NotEmpty(t, Var("title", "line\nbreak", tag))
}

func TestVar_StringLengthCountsRunes(t *testing.T) {
	assert.Empty(t, Var("location", strings.Repeat("ø", 100), "max=100"))
	assert.Equal(t, "location must be at most 100 characters long",
		Var("location", strings.Repeat("ø", 101), "max=100"))
}

func TestVar_NumericBounds(t *testing.T) {
	tag := "min=2,max=20000"
	assert.Equal(t, "piecesNumber must be at least 2", Var("piecesNumber", 1, tag))
	assert.Empty(t, Var("piecesNumber", 2, tag))
	assert.Empty(t, Var("piecesNumber", 20000, tag))
	assert.Equal(t, "piecesNumber must be at most 20000", Var("piecesNumber", 20001, tag))
}

func TestVar_Required(t *testing.T) {
	assert.Equal(t, "title is required", Var("title", "", "required"))
}

type creds struct {
	Username string `json:"username" validate:"required,max=50,alphanum"`
	Password string `json:"password" validate:"required,min=10,max=2000"`
}

func TestStruct_ReportsEveryFieldWithJSONNames(t *testing.T) {
	msgs, err := Struct(creds{Username: "bad name", Password: "short"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"username may only contain letters and digits",
		"password must be at least 10 characters long",
	}, msgs)
}

func TestStruct_Valid(t *testing.T) {
	msgs, err := Struct(creds{Username: "alice", Password: "longenough1"})
	require.NoError(t, err)
	assert.Nil(t, msgs)
}
