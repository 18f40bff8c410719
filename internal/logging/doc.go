// Package logging provides structured logging for the h5bank tools.
//
// This package wraps a global zap logger. The CLIs are silent by default so
// their output can be piped; set H5BANK_LOG_LEVEL to see what they do:
//
//	H5BANK_LOG_LEVEL=debug h5-image duplicate primary_Secure.elf
//
// # Log Levels
//
//   - Debug: word dumps, extracted section bytes, tool command lines
//   - Info: files read and written, sections copied
//   - Warn: checks that failed in best-effort mode
//   - Error: failures that abort a command
//
// # Structured Logging
//
//	logging.Info("section copied",
//	    zap.String("section", ".text"),
//	    logging.Hex64("addr", 0x0c100000),
//	    zap.Int("size", 18432),
//	)
//
// Logs go to stderr in console format. All functions are safe for
// concurrent use.
package logging
