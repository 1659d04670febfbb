package history

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAppendFirstTrackedEdit(t *testing.T) {
	got := Append(nil, "<html>A</html>", "<html>B</html>", "make header blue", base)

	require.Len(t, got, 2)

	assert.Equal(t, "make header blue", got[0].Description)
	assert.Equal(t, "<html>B</html>", got[0].Snapshot)
	assert.Equal(t, base, got[0].CreatedAt)

	assert.Equal(t, BaseDesignLabel, got[1].Description)
	assert.Equal(t, "<html>A</html>", got[1].Snapshot)
	assert.Equal(t, base.Add(-time.Millisecond), got[1].CreatedAt)
	assert.True(t, got[1].CreatedAt.Before(got[0].CreatedAt))
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestAppendNoMigrationForNewUser(t *testing.T) {
	// No prior artifact: nothing to migrate, just the new entry.
	got := Append(nil, "", "<html>B</html>", "first edit", base)

	require.Len(t, got, 1)
	assert.Equal(t, "first edit", got[0].Description)
}

func TestAppendNoMigrationWhenHistoryExists(t *testing.T) {
	existing := []Entry{{ID: "1", Snapshot: "<html>old</html>", Description: "older edit", CreatedAt: base.Add(-time.Hour)}}

	got := Append(existing, "<html>A</html>", "<html>B</html>", "newer edit", base)

	require.Len(t, got, 2)
	assert.Equal(t, "newer edit", got[0].Description)
	assert.Equal(t, "older edit", got[1].Description)
}

func TestAppendDoesNotMutateInput(t *testing.T) {
	existing := make([]Entry, 3, 8)
	for i := range existing {
		existing[i] = Entry{ID: fmt.Sprint(i), Description: fmt.Sprintf("edit %d", i)}
	}

	_ = Append(existing, "<html>A</html>", "<html>B</html>", "new", base)

	require.Len(t, existing, 3)
	assert.Equal(t, "edit 0", existing[0].Description)
}

func TestAppendEvictsOldest(t *testing.T) {
	var entries []Entry
	for i := range 12 {
		now := base.Add(time.Duration(i) * time.Minute)
		entries = Append(entries, "<html>A</html>", fmt.Sprintf("<html>v%d</html>", i), fmt.Sprintf("edit %d", i), now)
		assert.LessOrEqual(t, len(entries), MaxEntries)
	}

	require.Len(t, entries, MaxEntries)
	// Newest first, oldest evicted.
	assert.Equal(t, "edit 11", entries[0].Description)
	assert.Equal(t, "edit 4", entries[MaxEntries-1].Description)
}

func TestAppendTruncatesDescription(t *testing.T) {
	long := strings.Repeat("x", 500)

	got := Append(nil, "", "<html></html>", long, base)

	require.Len(t, got, 1)
	assert.Len(t, got[0].Description, MaxDescriptionLength)
}

func TestFind(t *testing.T) {
	entries := Append(nil, "<html>A</html>", "<html>B</html>", "edit", base)

	e, ok := Find(entries, entries[1].ID)
	require.True(t, ok)
	assert.Equal(t, BaseDesignLabel, e.Description)

	_, ok = Find(entries, "nope")
	assert.False(t, ok)
}
