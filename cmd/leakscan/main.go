// Package main provides the entry point for the leakscan CLI.
//
// leakscan checks whether an email address, phone number or password has
// appeared in known data breaches and scores the resulting exposure.
//
// Usage:
//
//	leakscan check <target>
//	leakscan check --list <file>
//	leakscan check --prompt
//
// See --help for all available options.
package main

func main() {
	Execute()
}
