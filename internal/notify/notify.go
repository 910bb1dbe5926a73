// Package notify reports batch progress through logrus.
package notify

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// LogNotifier writes progress, failures and the run summary as log entries
type LogNotifier struct {
	logger logrus.FieldLogger
}

// NewLogNotifier creates a notifier logging to logger
func NewLogNotifier(logger logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// RunStarted logs the number of outputs the run will attempt
func (n *LogNotifier) RunStarted(total int) {
	n.logger.WithField("total", total).Info("Starting augmentation")
}

// Progress logs the completed fraction at debug level
func (n *LogNotifier) Progress(fraction float64, text string) {
	n.logger.WithFields(logrus.Fields{
		"progress": fmt.Sprintf("%.1f%%", fraction*100),
	}).Debug(text)
}

// ItemFailed logs one failed output as a warning
func (n *LogNotifier) ItemFailed(path string, copyIndex int, err error) {
	n.logger.WithFields(logrus.Fields{
		"file": path,
		"copy": copyIndex,
	}).WithError(err).Warn("Failed to process image")
}

// Finished logs the summary line, as a warning when anything failed
func (n *LogNotifier) Finished(stats types.RunStats) {
	entry := n.logger.WithFields(logrus.Fields{
		"processed": stats.Processed,
		"succeeded": stats.Succeeded,
		"failed":    stats.Failed,
		"total":     stats.Total,
	})
	msg := Summary(stats)
	if stats.Failed > 0 {
		entry.Warn(msg)
		return
	}
	entry.Info(msg)
}

// Summary is the one line end-of-run report
func Summary(stats types.RunStats) string {
	msg := fmt.Sprintf("created %d files from %d source images", stats.Succeeded, stats.Files)
	if stats.Failed > 0 {
		msg += fmt.Sprintf(", %d failed", stats.Failed)
	}
	return msg + fmt.Sprintf(" (%d/%d items)", stats.Processed, stats.Total)
}
