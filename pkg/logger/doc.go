// Package logger provides structured logging for the scraper, built on
// zerolog.
//
// The package exposes a small Logger interface so the rest of the code
// never imports zerolog directly:
//
//   - Leveled logging: Debug, Info, Warn, Error, Fatal
//   - Structured fields: InfoWithFields and friends, plus WithField,
//     WithFields and WithError for derived loggers
//   - Console or JSON output, with optional duplication to a log file
//
// Typical setup at program start:
//
//	err := logger.Initialize(logger.Config{Level: "info", Pretty: true})
//	if err != nil {
//	    // handle
//	}
//	log := logger.GetLogger()
//	log.InfoWithFields("scrape started", map[string]interface{}{
//	    "handle": handle,
//	})
//
// TestLogger records entries in memory and is used by tests that assert
// on what was logged.
package logger
