// Package pipeline runs a check of one target as a sequence of steps.
//
// A check looks the target up in the breach sources and then derives
// metrics from the findings: password strength for passwords, a risk score
// for email addresses and phone numbers, and a first-seen estimate for email
// addresses. Each stage is a Step that receives the report built so far and
// adds to it. The Checker chooses the steps for the target's kind.
//
// Steps fail open. A step that cannot reach its upstream leaves its part of
// the report at the neutral value and the pipeline moves on; only context
// cancellation stops a check early.
//
// BatchProcessor checks many targets concurrently with a bounded number of
// goroutines using errgroup.
package pipeline
