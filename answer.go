package quizgame

import "strings"

// NormalizeAnswer trims surrounding whitespace and lowercases s
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AnswerMatches reports whether a player's answer matches the stored one.
// Inner whitespace is significant: "par is" does not match "paris".
func AnswerMatches(given, expected string) bool {
	return NormalizeAnswer(given) == NormalizeAnswer(expected)
}
