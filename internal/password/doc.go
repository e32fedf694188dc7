// Package password estimates the strength of a password target.
//
// Entropy is a character-pool estimate: the password is assumed to be drawn
// uniformly from the union of the character classes it uses. Crack time
// assumes an offline attacker testing 1e11 guesses per second. The score
// combines both with bonuses for length and symbols, and drops to zero as
// soon as the password is known to have leaked.
package password
