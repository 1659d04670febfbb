// Package history maintains the bounded list of prior artifact snapshots
// kept per user.
//
// The list is ordered most-recent-first and capped at MaxEntries; once full,
// the oldest entry is dropped on each append. Records created before history
// tracking existed are migrated lazily: the first tracked edit synthesizes a
// "base design" entry from the pre-edit artifact so it is never silently lost.
package history

import (
	"strconv"
	"time"
)

const (
	// MaxEntries is the maximum number of snapshots retained per user.
	MaxEntries = 8

	// MaxDescriptionLength is the rune limit for an entry description.
	// Longer edit instructions are truncated.
	MaxDescriptionLength = 200

	// BaseDesignLabel is the description of the synthesized entry that
	// captures a user's pre-history artifact on their first tracked edit.
	BaseDesignLabel = "base design"
)

// Entry is an immutable snapshot of the artifact at a point in time.
type Entry struct {
	ID          string    `json:"id"`
	Snapshot    string    `json:"snapshot"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Append returns the history after recording a new snapshot.
//
// priorArtifact is the artifact that was current before this edit. When
// entries is empty and priorArtifact is non-empty the user predates history
// tracking, so a BaseDesignLabel entry is synthesized first, timestamped one
// millisecond before now to keep ordering stable.
//
// The input slice is not modified. The result holds at most MaxEntries
// entries, newest first.
func Append(entries []Entry, priorArtifact, snapshot, description string, now time.Time) []Entry {
	migrated := entries
	if len(entries) == 0 && priorArtifact != "" {
		base := now.Add(-time.Millisecond)
		migrated = []Entry{{
			ID:          entryID(base),
			Snapshot:    priorArtifact,
			Description: BaseDesignLabel,
			CreatedAt:   base,
		}}
	}

	updated := make([]Entry, 0, len(migrated)+1)
	updated = append(updated, Entry{
		ID:          entryID(now),
		Snapshot:    snapshot,
		Description: truncate(description, MaxDescriptionLength),
		CreatedAt:   now,
	})
	updated = append(updated, migrated...)

	if len(updated) > MaxEntries {
		updated = updated[:MaxEntries]
	}
	return updated
}

// Find returns the entry with the given ID, or false when absent.
func Find(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// entryID derives a unique token from the entry's timestamp.
func entryID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// truncate limits s to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
