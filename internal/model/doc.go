// Package model defines the core data structures used throughout leakscan.
//
// This package contains the following main types:
//   - Target: A classified, normalized identifier (email, phone or password)
//   - Finding: One breach or exposure record attributed to a named source
//   - FindingSet: An ordered collection of findings, unique by name
//   - PasswordMetrics: Strength metrics for password targets
//   - RiskResult: Account risk metrics for email and phone targets
//   - Report: The structured result of a single check
//
// Models live in their own package so that the source adapters, the scoring
// packages and the report writers can share them without import cycles.
// All values are created fresh for each check and are never shared between
// requests.
package model
