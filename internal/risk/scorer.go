// Package risk scores how exposed an email or phone identifier is based on
// the breaches it appears in.
package risk

import "github.com/nao1215/leakscan/internal/model"

const (
	// pointsPerFinding is added for every finding.
	pointsPerFinding = 15

	// pointsPerPasswordLeak is added for every finding that exposed passwords.
	pointsPerPasswordLeak = 20

	maxScore = 100
)

// Calculate returns a 0-100 risk score for findings.
// Only the exact data class "password" earns the password bonus.
func Calculate(findings []model.Finding) int {
	score := len(findings) * pointsPerFinding
	for _, f := range findings {
		if f.HasDataClass(model.DataClassPassword) {
			score += pointsPerPasswordLeak
		}
	}
	return max(0, min(score, maxScore))
}

// LevelFor buckets a risk score for display.
func LevelFor(score int) model.RiskLevel {
	return model.RiskLevelFor(score)
}

// Assess scores findings and wraps the result with its level.
// firstSeen is carried through unchanged and may be empty.
func Assess(findings []model.Finding, firstSeen string) model.RiskResult {
	score := Calculate(findings)
	return model.RiskResult{
		RiskScore: score,
		FirstSeen: firstSeen,
		Level:     LevelFor(score),
	}
}
