package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	// MinPasswordScore is the strength a new password must reach.
	MinPasswordScore = 3
	MaxPasswordScore = 5
)

// passwordSymbols is the punctuation set of the fifth strength criterion.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

var strengthLabels = [...]string{
	0: "Sangat Lemah",
	1: "Lemah",
	2: "Sedang",
	3: "Sedang",
	4: "Kuat",
	5: "Sangat Kuat",
}

// PasswordStrength scores password from 0 to 5, one point each for:
// length >= 8, an uppercase letter, a digit, any non-alphanumeric rune, and a
// rune from passwordSymbols. The last two overlap: every symbol also counts as
// non-alphanumeric.
func PasswordStrength(password string) int {
	var upper, digit, other bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			other = true
		}
	}

	score := 0
	if utf8.RuneCountInString(password) >= MinPasswordLength {
		score++
	}
	if upper {
		score++
	}
	if digit {
		score++
	}
	if other {
		score++
	}
	if strings.ContainsAny(password, passwordSymbols) {
		score++
	}
	return score
}

// StrengthLabel returns the user-facing label of a strength score.
func StrengthLabel(score int) string {
	if score < 0 {
		score = 0
	}
	if score > MaxPasswordScore {
		score = MaxPasswordScore
	}
	return strengthLabels[score]
}

// PasswordProblem returns an error message, or "" when the password is
// acceptable for a new credential.
func PasswordProblem(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "must be at least 8 characters"
	}
	if PasswordStrength(password) < MinPasswordScore {
		return "is too weak (" + StrengthLabel(PasswordStrength(password)) + ")"
	}
	return ""
}
