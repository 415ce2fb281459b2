package utils

import "strings"

// SplitCategory removes the first +category tag from text and returns the
// remaining words and the category without its prefix.
func SplitCategory(text string) (rest, category string) {
	words := strings.Fields(text)
	kept := words[:0]
	for _, word := range words {
		if category == "" && strings.HasPrefix(word, "+") && len(word) > 1 {
			category = word[1:]
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " "), category
}
