package history

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(text string) hanzi.RecognitionResult {
	var chars []hanzi.RecognizedCharacter
	for _, r := range text {
		chars = append(chars, hanzi.NewCharacter(string(r), "x"))
	}
	return hanzi.RecognitionResult{Characters: chars}
}

func TestStore_AppendAndLoad(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 17, 8, 30, 0, 123456789, time.UTC))
	store := NewStore(NewMemoryKV(), WithClock(clock))

	r := hanzi.RecognitionResult{
		Characters: []hanzi.RecognizedCharacter{
			hanzi.NewCharacter("你", "nǐ"),
			hanzi.NewCharacter("好", "hǎo").WithMeaning("good"),
		},
		Translation: hanzi.Ptr("Hello"),
	}

	entry, err := store.Append(r)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "你好", entry.Preview)
	assert.Equal(t, "nǐ hǎo", entry.PinyinPreview)
	assert.Equal(t, r.Characters, entry.Results)
	assert.Equal(t, "Hello", *entry.Translation)
	assert.True(t, time.Date(2026, 10, 17, 8, 30, 0, 123000000, time.UTC).Equal(entry.Timestamp))

	entries, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, r, entries[0].Result())
}

func TestStore_EmptyResultIsNotRecorded(t *testing.T) {
	t.Parallel()

	store := NewStore(NewMemoryKV())
	_, err := store.Append(result("一"))
	require.NoError(t, err)

	_, err = store.Append(hanzi.RecognitionResult{Translation: hanzi.Ptr("nothing")})
	require.ErrorIs(t, err, hanzi.ErrEmptyResult)

	entries, err := store.LoadAll()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_BoundedMostRecentFirst(t *testing.T) {
	t.Parallel()

	store := NewStore(NewMemoryKV())

	var appended []hanzi.HistoryEntry
	for i := 0; i < MaxHistory+5; i++ {
		entry, err := store.Append(result(string(rune('一' + i))))
		require.NoError(t, err)
		appended = append(appended, entry)

		entries, err := store.LoadAll()
		require.NoError(t, err)
		assert.Len(t, entries, min(i+1, MaxHistory))
		assert.Equal(t, entry.ID, entries[0].ID, "newest entry must be first")
	}

	entries, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, MaxHistory)
	for i, e := range entries {
		assert.Equal(t, appended[len(appended)-1-i].ID, e.ID)
	}
	for _, evicted := range appended[:5] {
		_, found, err := store.Get(evicted.ID)
		require.NoError(t, err)
		assert.False(t, found)
	}
}

func TestStore_IDsAreUniqueAndOrdered(t *testing.T) {
	t.Parallel()

	store := NewStore(NewMemoryKV())
	var prev string
	for i := 0; i < 5; i++ {
		e, err := store.Append(result("好"))
		require.NoError(t, err)
		assert.Greater(t, e.ID, prev)
		prev = e.ID
	}
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	store := NewStore(NewMemoryKV())
	for i := 0; i < 3; i++ {
		_, err := store.Append(result("字"))
		require.NoError(t, err)
	}

	require.NoError(t, store.Clear())
	entries, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = store.Append(result("新"))
	require.NoError(t, err)
	entries, err = store.LoadAll()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_CorruptStateReadsAsEmptyAndSelfHeals(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"not json",
		`{"id": 1}`,
		`[{"id": true, "preview": "x"}]`,
		`[{"id": "a", "results": "oops"}]`,
	} {
		raw := raw
		t.Run(raw, func(t *testing.T) {
			t.Parallel()

			kv := NewMemoryKV()
			require.NoError(t, kv.Set(StorageKey, raw))
			store := NewStore(kv)

			entries, err := store.LoadAll()
			require.NoError(t, err)
			assert.Empty(t, entries)

			_, err = store.Append(result("好"))
			require.NoError(t, err)
			entries, err = store.LoadAll()
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestStore_AcceptsNumericIDs(t *testing.T) {
	t.Parallel()

	kv := NewMemoryKV()
	require.NoError(t, kv.Set(StorageKey, `[{"id":1718000000000,"preview":"你好","pinyinPreview":"nǐ hǎo",`+
		`"results":[{"character":"你","pinyin":"nǐ"},{"character":"好","pinyin":"hǎo","meaning":"good"}],`+
		`"translation":"Hello","timestamp":"2024-06-10T06:13:20.000Z","extra":1}]`))

	entries, err := NewStore(kv).LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1718000000000", entries[0].ID)
	assert.Equal(t, "good", entries[0].Results[1].MeaningOr(""))
	assert.False(t, entries[0].Results[0].HasMeaning())
}

func TestStore_RoundTripThroughFreshInstance(t *testing.T) {
	t.Parallel()

	kv := NewMemoryKV()
	first := NewStore(kv)
	for _, text := range []string{"你好", "中国", "谢谢你"} {
		_, err := first.Append(result(text))
		require.NoError(t, err)
	}
	before, err := first.LoadAll()
	require.NoError(t, err)

	after, err := NewStore(kv).LoadAll()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

type failingKV struct{ *MemoryKV }

func (failingKV) Set(string, string) error { return errors.New("disk full") }

func TestStore_WriteFailureIsReported(t *testing.T) {
	t.Parallel()

	store := NewStore(failingKV{NewMemoryKV()})
	_, err := store.Append(result("好"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSQLiteKV_Persists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "history.db")
	kv, err := OpenSQLite(path)
	require.NoError(t, err)

	store := NewStore(kv)
	for i := 0; i < MaxHistory+2; i++ {
		_, err := store.Append(result(fmt.Sprintf("%c", '一'+i)))
		require.NoError(t, err)
	}
	before, err := store.LoadAll()
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	after, err := NewStore(reopened).LoadAll()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, after, MaxHistory)

	require.NoError(t, NewStore(reopened).Clear())
	_, found, err := reopened.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, found)
}
