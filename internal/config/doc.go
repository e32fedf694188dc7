// Package config provides configuration structures and utilities for leakscan.
// It defines the options for checking targets, the per-source settings read
// from the .leakscan YAML file, and the XDG locations of the local breach
// corpus and index.
//
// Values are layered in increasing precedence: built-in defaults, the
// configuration file, environment variables, and finally CLI flags.
package config
