package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2026, 8, 15, 10, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	encoded := EncodeCursor(cursor)
	require.NotEmpty(t, encoded)

	decoded, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, decoded.CreatedAt.Equal(cursor.CreatedAt))
	assert.Equal(t, cursor.ID, decoded.ID)
}

func TestParseCursorEmptyMeansFirstPage(t *testing.T) {
	decoded, err := ParseCursor("")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"not-base64!", "aGVsbG8=", "aGVsbG98d29ybGQ="} {
		_, err := ParseCursor(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 24, DefaultLimit)
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
}

func TestLimitWithBuffer(t *testing.T) {
	assert.Equal(t, 25, LimitWithBuffer(24))
}
