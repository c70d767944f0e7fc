// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package dateformat parses and formats calendar dates using ISO/CLDR style
// patterns such as "yyyy-MM-dd", "dd.MM.y" or "MMM d, y".
//
// Supported pattern letters:
//
//	y, Y   year ("yy" is a two digit year)
//	M, L   month (M: 1, MM: 01, MMM: Jan, MMMM: January)
//	d      day of month
//	E      day of week (EEE: Mon, EEEE: Monday); ignored when parsing
//
// Text in single quotes is copied literally, "''" is a single quote. Any other
// character is a literal.
package dateformat

import "strings"

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenField
)

type token struct {
	kind   tokenKind
	letter byte
	width  int
	text   string
}

func isFieldLetter(c byte) bool {
	switch c {
	case 'y', 'Y', 'M', 'L', 'd', 'E':
		return true
	}
	return false
}

// tokenize splits a pattern into field and literal tokens.
func tokenize(pattern string) []token {
	var tokens []token
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch {
		case c == '\'':
			// '' is an escaped quote
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				lit.WriteByte('\'')
				i += 2
				continue
			}
			end := strings.IndexByte(pattern[i+1:], '\'')
			if end < 0 {
				lit.WriteString(pattern[i+1:])
				i = len(pattern)
				continue
			}
			lit.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
		case isFieldLetter(c):
			flush()
			j := i
			for j < len(pattern) && pattern[j] == c {
				j++
			}
			tokens = append(tokens, token{kind: tokenField, letter: c, width: j - i})
			i = j
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return tokens
}
