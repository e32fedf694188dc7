package password

import (
	"math"
	"math/big"
	"strconv"
	"unicode/utf8"

	"github.com/nao1215/leakscan/internal/model"
)

// Character pool sizes used by Entropy.
const (
	poolLower  = 26
	poolUpper  = 26
	poolDigit  = 10
	poolSymbol = 32
)

// guessesPerSecond is the assumed offline cracking rate.
const guessesPerSecond = 1e11

// InstantCrackTime is returned when the estimate is below one second.
const InstantCrackTime = "Instantly"

// Score components.
const (
	entropyCap   = 60
	lengthBonus  = 20
	symbolBonus  = 20
	longPassword = 12
	maxScore     = 100
)

// timeUnit is one row of the crack time interval table.
type timeUnit struct {
	name    string
	seconds float64
}

// crackTimeUnits is ordered from largest to smallest.
var crackTimeUnits = []timeUnit{
	{name: "centuries", seconds: 3.154e9},
	{name: "years", seconds: 31536000},
	{name: "days", seconds: 86400},
	{name: "hours", seconds: 3600},
	{name: "minutes", seconds: 60},
	{name: "seconds", seconds: 1},
}

// charClasses records which character classes a password uses.
type charClasses struct {
	lower, upper, digit, symbol bool
}

func classify(pw string) charClasses {
	var c charClasses
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			c.lower = true
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= '0' && r <= '9':
			c.digit = true
		default:
			c.symbol = true
		}
	}
	return c
}

func (c charClasses) pool() int {
	pool := 0
	if c.lower {
		pool += poolLower
	}
	if c.upper {
		pool += poolUpper
	}
	if c.digit {
		pool += poolDigit
	}
	if c.symbol {
		pool += poolSymbol
	}
	return pool
}

// Entropy returns the estimated entropy of pw in bits, rounded to two decimals.
// Anything outside [a-zA-Z0-9] counts toward the symbol pool, including
// whitespace and non-ASCII characters.
func Entropy(pw string) float64 {
	return round2(entropyBits(pw))
}

func entropyBits(pw string) float64 {
	pool := classify(pw).pool()
	if pool == 0 {
		return 0
	}
	return float64(utf8.RuneCountInString(pw)) * math.Log2(float64(pool))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CrackTime converts an entropy estimate into a human-readable duration such
// as "3 days" or "12 centuries". Estimates below one second yield "Instantly".
func CrackTime(entropy float64) string {
	if entropy <= 0 {
		return InstantCrackTime
	}

	guesses := math.Pow(2, entropy)
	if math.IsInf(guesses, 1) {
		return bigCrackTime(entropy)
	}

	seconds := guesses / guessesPerSecond
	for _, unit := range crackTimeUnits {
		if v := seconds / unit.seconds; v >= 1 {
			return strconv.FormatFloat(math.Floor(v), 'f', 0, 64) + " " + unit.name
		}
	}
	return InstantCrackTime
}

// bigCrackTime handles entropies whose guess space overflows float64.
// Such values are always expressed in centuries.
func bigCrackTime(entropy float64) string {
	whole := uint(entropy)
	frac := entropy - float64(whole)

	guesses := new(big.Float).SetMantExp(big.NewFloat(math.Pow(2, frac)), int(whole))
	centuries := new(big.Float).Quo(guesses, big.NewFloat(guessesPerSecond*crackTimeUnits[0].seconds))

	n, _ := centuries.Int(nil)
	return n.String() + " " + crackTimeUnits[0].name
}

// Score returns a 0-100 strength score. Any leak forces the score to 0.
func Score(pw string, entropy float64, leaks int) int {
	if leaks > 0 {
		return 0
	}

	score := math.Min(entropy, entropyCap)
	if utf8.RuneCountInString(pw) > longPassword {
		score += lengthBonus
	}
	if classify(pw).symbol {
		score += symbolBonus
	}

	return max(0, min(int(score), maxScore))
}

// Analyze computes the full strength metrics of pw given how many times it
// appeared in breach corpora.
func Analyze(pw string, leaks int) model.PasswordMetrics {
	leaks = max(leaks, 0)
	entropy := entropyBits(pw)
	return model.PasswordMetrics{
		Entropy:   round2(entropy),
		CrackTime: CrackTime(entropy),
		Score:     Score(pw, entropy, leaks),
		LeakCount: leaks,
	}
}
