package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesmith/pagesmith/internal/history"
)

// fakeRow implements pgx.Row over a fixed set of column values.
type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch v := r.values[i].(type) {
		case string:
			*d.(*string) = v
		case int:
			*d.(*int) = v
		case []byte:
			*d.(*[]byte) = v
		case nil:
			// leave destination at its zero value (NULL column)
		case time.Time:
			*d.(*time.Time) = v
		}
	}
	return nil
}

func TestScanDoc(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("tracked record with history", func(t *testing.T) {
		entries := []history.Entry{{ID: "1", Snapshot: "<html>A</html>", Description: "base design", CreatedAt: created}}
		raw, err := json.Marshal(entries)
		require.NoError(t, err)

		doc, err := scanDoc(&fakeRow{values: []any{
			"alice_example.com", "alice@example.com", "<html>B</html>", 12, raw, created, created,
		}})
		require.NoError(t, err)

		assert.True(t, doc.HistoryTracked)
		require.Len(t, doc.History, 1)
		assert.Equal(t, "base design", doc.History[0].Description)
		assert.Equal(t, 12, doc.CreditBalance)
	})

	t.Run("legacy record with NULL history", func(t *testing.T) {
		doc, err := scanDoc(&fakeRow{values: []any{
			"old-key", "old@example.com", "<html>A</html>", 9, nil, created, created,
		}})
		require.NoError(t, err)

		assert.False(t, doc.HistoryTracked)
		assert.Nil(t, doc.History)
	})

	t.Run("corrupt history surfaces an error", func(t *testing.T) {
		_, err := scanDoc(&fakeRow{values: []any{
			"k", "e@example.com", "", 0, []byte("{not json"), created, created,
		}})
		assert.Error(t, err)
	})
}

func TestMarshalHistory(t *testing.T) {
	t.Run("nil becomes empty array", func(t *testing.T) {
		raw, err := marshalHistory(nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(raw))
	})

	t.Run("entries round-trip", func(t *testing.T) {
		in := []history.Entry{{ID: "17", Snapshot: "<html></html>", Description: "d"}}
		raw, err := marshalHistory(in)
		require.NoError(t, err)

		var out []history.Entry
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, in, out)
	})
}
