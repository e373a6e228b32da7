package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// YearTokens returns the years from..to inclusive as four-digit tokens.
// A descending range yields descending tokens.
func YearTokens(from, to int) []string {
	step := 1
	if to < from {
		step = -1
	}

	tokens := make([]string, 0, abs(to-from)+1)
	for y := from; ; y += step {
		tokens = append(tokens, fmt.Sprintf("%04d", y))
		if y == to {
			break
		}
	}
	return tokens
}

// ParseTokens parses a comma separated list of tokens. An entry of the form
// "YYYY-YYYY" expands to the inclusive year range; any other entry, including
// hyphenated ones such as "1979-01", is taken as a single token. Entries are
// trimmed and blank entries dropped. Tokens containing whitespace or a path
// separator are rejected.
//
// Example:
//
//	ParseTokens("1948-1950, 1965") // ["1948" "1949" "1950" "1965"]
//	ParseTokens("1979-01,ltm")     // ["1979-01" "ltm"]
func ParseTokens(spec string) ([]string, error) {
	tokens := []string{}
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if from, to, ok := yearRange(entry); ok {
			tokens = append(tokens, YearTokens(from, to)...)
			continue
		}

		if strings.ContainsFunc(entry, unicode.IsSpace) {
			return nil, fmt.Errorf("token %q contains whitespace", entry)
		}
		if strings.ContainsAny(entry, `/\`) {
			return nil, fmt.Errorf("token %q contains a path separator", entry)
		}
		tokens = append(tokens, entry)
	}
	return tokens, nil
}

// Duplicates returns every token that occurs more than once, in order of
// first repetition.
func Duplicates(tokens []string) []string {
	seen := make(map[string]int, len(tokens))
	var dups []string
	for _, token := range tokens {
		seen[token]++
		if seen[token] == 2 {
			dups = append(dups, token)
		}
	}
	return dups
}

// yearRange parses "YYYY-YYYY", allowing spaces around the dash.
func yearRange(entry string) (from, to int, ok bool) {
	a, b, found := strings.Cut(entry, "-")
	if !found {
		return 0, 0, false
	}
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if !isYear(a) || !isYear(b) {
		return 0, 0, false
	}
	from, _ = strconv.Atoi(a)
	to, _ = strconv.Atoi(b)
	return from, to, true
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
