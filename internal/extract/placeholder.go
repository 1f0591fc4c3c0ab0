package extract

import (
	"fmt"
	"regexp"
)

// tokenRe matches exactly one placeholder token occupying the whole string:
// a positive base-10 index with no leading zeros inside double braces.
var tokenRe = regexp.MustCompile(`^\{\{table_[1-9][0-9]*\}\}$`)

// Key returns the storage key for the nth discovered table, counting from 1.
// It is the placeholder token without the surrounding braces.
func Key(n int) string {
	return fmt.Sprintf("table_%d", n)
}

// Token returns the inline placeholder that marks a table's former position
// in the prose output.
func Token(n int) string {
	return fmt.Sprintf("{{table_%d}}", n)
}

// IsToken reports whether s is exactly one placeholder token.
func IsToken(s string) bool {
	return tokenRe.MatchString(s)
}
