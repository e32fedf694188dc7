package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and File.Validate() so that
// callers can use errors.Is() while still showing a human-readable message.
var (
	// ErrNoTarget is returned when no target is given, or when a target is empty.
	ErrNoTarget = errors.New("no target specified: provide an email, phone number or password, or use --list or --prompt")

	// ErrInvalidTargetType is returned when --type is not auto, email or password.
	ErrInvalidTargetType = errors.New("invalid target type: must be auto, email or password")

	// ErrInvalidTimeout is returned when the per-source timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingTransports is returned when both --tor and --socks-proxy are given.
	ErrConflictingTransports = errors.New("conflicting transports: --tor and --socks-proxy cannot be used together")

	// ErrInvalidTorStartupTimeout is returned when the embedded Tor startup timeout is not positive.
	ErrInvalidTorStartupTimeout = errors.New("invalid tor startup timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownSource is returned when the configuration file names a source
	// that does not exist.
	ErrUnknownSource = errors.New("unknown source in configuration file")

	// ErrInvalidSourceTimeout is returned when a source timeout in the
	// configuration file is negative.
	ErrInvalidSourceTimeout = errors.New("invalid source timeout: must be non-negative")
)
