package pagination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "123", CreatedAt: "2026-03-07T10:30:00Z"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "123", cursor.ID)
	assert.Equal(t, "2026-03-07T10:30:00Z", cursor.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64 at all!!!")
	assert.Error(t, err)

	// Valid base64, invalid payload.
	_, err = DecodeCursor("bm90IGpzb24=")
	assert.Error(t, err)
}

type row struct {
	id string
}

func rows(n int) []*row {
	out := make([]*row, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &row{id: fmt.Sprintf("row-%d", i)})
	}
	return out
}

func TestBuildCursorPageInfo(t *testing.T) {
	extract := func(r *row) string { return r.id }

	// Fetched limit+1, there is another page and the token points at
	// the last row of the trimmed page.
	info := BuildCursorPageInfo(rows(4), 3, extract)
	require.NotNil(t, info)
	assert.True(t, info.HasMore)
	assert.Equal(t, "row-2", info.NextPageToken)

	// Exactly limit means this was the last page.
	info = BuildCursorPageInfo(rows(3), 3, extract)
	assert.False(t, info.HasMore)
	assert.Equal(t, "row-2", info.NextPageToken)

	info = BuildCursorPageInfo(rows(0), 3, extract)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}
