package model

// RiskLevel buckets a risk or exposure score for display.
// Levels are ordered so that comparisons such as level >= RiskHigh work.
type RiskLevel int

const (
	// RiskLow indicates little or no known exposure.
	RiskLow RiskLevel = iota

	// RiskMedium indicates the identifier appeared in one or two breaches.
	RiskMedium

	// RiskHigh indicates repeated exposure or exposure with leaked passwords.
	RiskHigh

	// RiskCritical indicates the identifier is widely exposed and should be
	// considered compromised.
	RiskCritical
)

// Score boundaries between risk levels.
const (
	riskMediumFrom   = 25
	riskHighFrom     = 50
	riskCriticalFrom = 75
)

// String returns a human-readable representation of the risk level.
func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the level by name.
func (l RiskLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// RiskLevelFor maps a 0-100 risk score to a level.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= riskCriticalFrom:
		return RiskCritical
	case score >= riskHighFrom:
		return RiskHigh
	case score >= riskMediumFrom:
		return RiskMedium
	default:
		return RiskLow
	}
}

// PasswordMetrics holds the strength analysis of a password target.
type PasswordMetrics struct {
	// Entropy is the estimated guess space in bits, rounded to two decimals.
	Entropy float64 `json:"entropy"`

	// CrackTime is a human-readable offline cracking estimate such as "3 days".
	CrackTime string `json:"crack_time"`

	// Score is a 0-100 strength score. It is always 0 when LeakCount > 0.
	Score int `json:"score"`

	// LeakCount is the number of times the password appeared in breach corpora.
	LeakCount int `json:"leak_count"`
}

// Compromised reports whether the password has been seen in a breach.
func (m PasswordMetrics) Compromised() bool {
	return m.LeakCount > 0
}

// Level maps the strength score onto a risk level. A strong password is low risk.
func (m PasswordMetrics) Level() RiskLevel {
	if m.Compromised() {
		return RiskCritical
	}
	return RiskLevelFor(100 - m.Score)
}

// RiskResult holds the account risk analysis of an email or phone target.
type RiskResult struct {
	// RiskScore is a 0-100 composite score derived from the findings.
	RiskScore int `json:"risk_score"`

	// FirstSeen is the earliest plausible exposure as YYYY-MM or "Unknown".
	// It is only computed for email targets.
	FirstSeen string `json:"first_seen,omitempty"`

	// Level is the display bucket of RiskScore.
	Level RiskLevel `json:"level"`
}
