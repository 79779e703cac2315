package utils

import "strings"

// LikeEscape is the escape character used with ContainsPattern.
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ContainsPattern builds a LIKE pattern matching s anywhere, with the
// wildcards in s matched literally. Pair it with ESCAPE '!'.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
