package manifest

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

func sampleCollector() *Collector {
	c := NewCollector()
	c.Record(Entry{
		Source:     "in/a.png",
		Copy:       1,
		Status:     StatusOK,
		Width:      64,
		Height:     48,
		Steps:      []string{"scale 64x48", "flip horizontal"},
		Outputs:    []string{"out/a_aug.jpg", "out/a_aug.png"},
		DurationMS: 12,
	})
	c.Record(Entry{
		Source:  "in/b.png",
		Copy:    1,
		Status:  StatusFailed,
		Steps:   []string{"scale 1x1"},
		Outputs: []string{"out/b_aug.jpg"},
		Error:   "decode failed",
	})
	return c
}

func TestCollectorStampsRunID(t *testing.T) {
	c := sampleCollector()
	_, err := uuid.Parse(c.RunID())
	require.NoError(t, err)

	for _, e := range c.Entries() {
		assert.Equal(t, c.RunID(), e.RunID)
	}
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record(Entry{Source: fmt.Sprintf("%d.png", i), Copy: 1})
		}()
	}
	wg.Wait()
	assert.Len(t, c.Entries(), 50)
}

func TestWriteAndRead(t *testing.T) {
	for _, ext := range []string{".yaml", ".json", ".parquet"} {
		t.Run(ext, func(t *testing.T) {
			c := sampleCollector()
			path := filepath.Join(t.TempDir(), "reports", "manifest"+ext)
			require.NoError(t, c.WriteFile(path, types.RunStats{Total: 2, Processed: 2, Succeeded: 1, Failed: 1}))

			entries, err := ReadFile(path)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, c.Entries(), entries)
		})
	}
}

func TestWriteUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	assert.ErrorIs(t, NewCollector().WriteFile(path, types.RunStats{}), ErrUnsupportedType)
	assert.NoFileExists(t, path)
}

func TestCheckPath(t *testing.T) {
	for _, ok := range []string{"m.yaml", "m.YML", "out/m.json", "m.parquet"} {
		assert.NoError(t, CheckPath(ok), ok)
	}
	for _, bad := range []string{"m.csv", "manifest", "m.yaml.txt"} {
		assert.ErrorIs(t, CheckPath(bad), ErrUnsupportedType, bad)
	}
}

func TestDocument(t *testing.T) {
	c := sampleCollector()
	doc := c.Document(types.RunStats{Total: 2})
	assert.Equal(t, c.RunID(), doc.RunID)
	assert.Equal(t, 2, doc.Stats.Total)
	assert.NotEmpty(t, doc.Created)
	assert.Len(t, doc.Entries, 2)
}
