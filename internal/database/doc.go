// Package database provides the SQLite-backed local breach index.
//
// Users import breach dumps they legitimately hold with
// "leakscan corpus import". Each line is split into tokens, tokens that look
// like email addresses or phone numbers are normalized, and only their
// SHA3-256 digests are stored together with the name of the dump they came
// from. Lookups hash the target the same way, so the index never holds the
// plaintext identifiers it was built from.
//
// The index is built on modernc.org/sqlite, a CGO-free driver, and is opened
// with a single connection and WAL journaling.
package database
