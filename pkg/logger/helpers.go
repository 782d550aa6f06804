package logger

import "fmt"

// LogThreadFetch logs the outcome of a thread detail fetch.
func LogThreadFetch(handle, threadID string, success bool, err error) {
	fields := map[string]interface{}{
		"handle":    handle,
		"thread_id": threadID,
		"success":   success,
	}

	logger := GetLogger().WithFields(fields)

	if err != nil {
		logger.WithError(err).Error("Thread fetch failed")
	} else if success {
		logger.Info("Thread fetch completed")
	} else {
		logger.Warn("Thread fetch skipped")
	}
}

// LogScrapeProgress logs capture progress against the configured limit.
func LogScrapeProgress(handle string, captured, limit int) {
	fields := map[string]interface{}{
		"handle":   handle,
		"captured": captured,
	}

	if limit > 0 {
		fields["limit"] = limit
		fields["percentage"] = fmt.Sprintf("%.1f%%", float64(captured)/float64(limit)*100)
	}

	GetLogger().InfoWithFields("Capture progress", fields)
}
