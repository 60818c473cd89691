package game

import "strings"

// WordLabel extracts the guessable portion of a stored word: everything
// after the first space of "<emoji> <Label>".
func WordLabel(word string) string {
	_, label, found := strings.Cut(word, " ")
	if !found {
		return word
	}
	return label
}

// IsCorrectGuess compares a guess against the current word, case
// insensitively and ignoring surrounding whitespace.
func IsCorrectGuess(guess, currentWord string) bool {
	if currentWord == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(WordLabel(currentWord)))
}
