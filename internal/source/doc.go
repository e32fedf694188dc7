// Package source queries breach and reputation data sources for a target.
//
// Every data source implements the Source interface. A source declares which
// target kinds it can look up and turns one target into zero or more
// findings. Sources never return errors: transport failures, timeouts,
// non-2xx responses and malformed bodies are logged at debug level and
// produce no findings, so that one broken upstream cannot fail a check.
//
// The Aggregator fans a target out to every applicable source concurrently,
// gives each source its own deadline, and merges the results into a
// deduplicated, year-ordered model.FindingSet.
package source
