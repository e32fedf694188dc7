// Package log builds the slog loggers used by leakscan.
//
// Every logger returned here wraps its output handler in a SecureHandler,
// which keeps the values leakscan handles out of log files:
//   - attributes named like passwords, API keys or hashes are masked entirely
//   - full SHA-1 digests and long API-key-shaped strings are masked
//   - email addresses anywhere in a string or error keep only their first
//     letter and domain, e.g. "a***@example.com"
//
// Verbose mode lowers the level to Debug; otherwise only warnings and
// errors are printed so that reports on stdout stay readable.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
