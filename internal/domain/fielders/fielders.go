// Package fielders extracts defensive positions from play descriptions.
//
// Positions use the scorer's numbering: pitcher=1, catcher=2, first
// baseman=3, second baseman=4, third baseman=5, shortstop=6, left
// fielder=7, center fielder=8, right fielder=9.
package fielders

import (
	"regexp"
	"strconv"
	"strings"
)

// Position is a defensive position number, 1..9.
type Position int

// Defensive positions.
const (
	Pitcher Position = iota + 1
	Catcher
	FirstBaseman
	SecondBaseman
	ThirdBaseman
	Shortstop
	LeftFielder
	CenterFielder
	RightFielder
)

// vocabulary maps every recognized spelling to its position. Full names
// and two-letter abbreviations are both accepted.
var vocabulary = map[string]Position{
	"pitcher":        Pitcher,
	"catcher":        Catcher,
	"first baseman":  FirstBaseman,
	"1b":             FirstBaseman,
	"second baseman": SecondBaseman,
	"2b":             SecondBaseman,
	"third baseman":  ThirdBaseman,
	"3b":             ThirdBaseman,
	"shortstop":      Shortstop,
	"short stop":     Shortstop,
	"ss":             Shortstop,
	"left fielder":   LeftFielder,
	"lf":             LeftFielder,
	"center fielder": CenterFielder,
	"centre fielder": CenterFielder,
	"cf":             CenterFielder,
	"right fielder":  RightFielder,
	"rf":             RightFielder,
}

// fielderPattern matches any vocabulary entry on word boundaries. Longer
// spellings come first so "short stop" wins over a partial match.
var fielderPattern = regexp.MustCompile(`(?i)\b(first baseman|second baseman|third baseman|left fielder|center fielder|centre fielder|right fielder|short stop|shortstop|pitcher|catcher|1b|2b|3b|ss|lf|cf|rf)\b`)

// Sequence is an ordered list of positions as mentioned in text.
type Sequence []Position

// Resolve returns the positions mentioned in text, in order of appearance.
// Consecutive repeats collapse into one; non-consecutive repeats (relays)
// are kept. Text with no fielders yields an empty sequence.
func Resolve(text string) Sequence {
	matches := fielderPattern.FindAllString(text, -1)
	seq := make(Sequence, 0, len(matches))
	for _, m := range matches {
		pos, ok := vocabulary[normalize(m)]
		if ok {
			seq = append(seq, pos)
		}
	}
	return Collapse(seq)
}

// Collapse removes consecutive duplicates. It is idempotent.
func Collapse(seq Sequence) Sequence {
	out := make(Sequence, 0, len(seq))
	for _, p := range seq {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

// First returns the earliest position named in text and the byte offset of
// its mention, or (0, -1) when text names no fielder.
func First(text string) (Position, int) {
	for _, loc := range fielderPattern.FindAllStringIndex(text, -1) {
		if pos, ok := vocabulary[normalize(text[loc[0]:loc[1]])]; ok {
			return pos, loc[0]
		}
	}
	return 0, -1
}

// Mentions reports whether text names pos anywhere.
func Mentions(text string, pos Position) bool {
	for _, m := range fielderPattern.FindAllString(text, -1) {
		if vocabulary[normalize(m)] == pos {
			return true
		}
	}
	return false
}

// Limit returns at most n leading positions.
func (s Sequence) Limit(n int) Sequence {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Join renders the sequence as hyphen-joined digits, e.g. "6-4-3".
func (s Sequence) Join() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, "-")
}

func normalize(m string) string {
	return strings.Join(strings.Fields(strings.ToLower(m)), " ")
}
