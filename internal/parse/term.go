// Package parse turns raw request strings into values the query layers use.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"silant-backend/internal/model"
)

var spaceRe = regexp.MustCompile(`\s+`)

// likeEscaper escapes LIKE wildcards; queries declare '\' as the escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Term trims a search term and collapses inner whitespace to single spaces.
func Term(raw string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
}

// ContainsPattern builds a lower-cased LIKE pattern matching term anywhere.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// Date parses a YYYY-MM-DD calendar date as midnight UTC.
func Date(raw string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", raw)
	}
	return t, nil
}

// ID parses a positive record ID.
func ID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// PageNumber parses a 1-based page number. Anything unusable means page 1.
func PageNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
