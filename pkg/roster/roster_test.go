package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWithNames(t *testing.T) {
	orig := Record{
		Origin:    OriginPlatform,
		Line:      3,
		FirstName: "jane",
		LastName:  "doe",
		Email:     "Jane@UCSC.edu",
		Score:     Float(42),
		Fields: map[string]string{
			"First name":   "jane",
			"Last name":    "doe",
			"School email": "Jane@UCSC.edu",
		},
	}

	got := orig.WithNames("Jane", "Doe", "First name", "Last name")

	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, "Doe", got.LastName)
	assert.Equal(t, "Jane", got.Field("First name"))
	assert.Equal(t, "Doe", got.Field("Last name"))

	// The original is untouched.
	assert.Equal(t, "jane", orig.FirstName)
	assert.Equal(t, "jane", orig.Field("First name"))

	require.NotNil(t, got.Score)
	*got.Score = 99
	assert.Equal(t, 42.0, *orig.Score)
}

func TestRecordWithNamesSkipsAbsentColumns(t *testing.T) {
	orig := Record{FirstName: "a", LastName: "b", Fields: map[string]string{"x": "1"}}
	got := orig.WithNames("A", "B", "First name", "Last name")
	assert.Equal(t, map[string]string{"x": "1"}, got.Fields)

	bare := Record{FirstName: "a"}.WithNames("A", "B", "First name", "Last name")
	assert.Nil(t, bare.Fields)
}

func TestRecordHelpers(t *testing.T) {
	r := Record{Email: "  Mixed@Case.EDU ", FirstName: " Ada ", LastName: "Lovelace  "}
	assert.Equal(t, "mixed@case.edu", r.NormalizedEmail())

	first, last := r.TrimmedNames()
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Lovelace", last)

	assert.Equal(t, "platform", OriginPlatform.String())
}
