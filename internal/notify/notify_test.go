package notify

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	n := NewLogNotifier(logger)

	n.RunStarted(4)
	n.Progress(0.25, "processed: a.png (copy 1)")
	n.ItemFailed("b.png", 2, errors.New("boom"))
	n.Finished(types.RunStats{Total: 4, Processed: 4, Succeeded: 3, Failed: 1, Files: 2})

	entries := hook.AllEntries()
	require.Len(t, entries, 4)

	assert.Equal(t, 4, entries[0].Data["total"])
	assert.Equal(t, "processed: a.png (copy 1)", entries[1].Message)
	assert.Equal(t, "25.0%", entries[1].Data["progress"])
	assert.Equal(t, logrus.WarnLevel, entries[2].Level)
	assert.Equal(t, "b.png", entries[2].Data["file"])
	assert.EqualError(t, entries[2].Data[logrus.ErrorKey].(error), "boom")
	assert.Equal(t, logrus.WarnLevel, entries[3].Level)
	assert.Equal(t, "created 3 files from 2 source images, 1 failed (4/4 items)", entries[3].Message)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "created 6 files from 3 source images (6/6 items)",
		Summary(types.RunStats{Total: 6, Processed: 6, Succeeded: 6, Files: 3}))
	assert.Equal(t, "created 2 files from 1 source images, 1 failed (3/4 items)",
		Summary(types.RunStats{Total: 4, Processed: 3, Succeeded: 2, Failed: 1, Files: 1}))
}
