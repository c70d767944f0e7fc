// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dateformat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cloudeng.io/datetime"
)

// ErrInvalidDate is wrapped by every parse failure.
var ErrInvalidDate = errors.New("invalid date")

// MaxYear is the largest year accepted by the parser.
const MaxYear = 9999

// Parse parses value with pattern. The whole value must match the pattern
// and the result must be a real calendar day.
func Parse(value, pattern, lang string) (datetime.CalendarDate, error) {
	var (
		year, month, day int
		haveYear         bool
		haveMonth        bool
		haveDay          bool
	)
	n := namesFor(lang)
	rest := strings.TrimSpace(value)

	for _, tok := range tokenize(pattern) {
		if tok.kind == tokenLiteral {
			if !strings.HasPrefix(rest, tok.text) {
				return 0, mismatch(value, pattern)
			}
			rest = rest[len(tok.text):]
			continue
		}

		var err error
		switch tok.letter {
		case 'y', 'Y':
			if tok.width == 2 {
				year, rest, err = readDigits(rest, 2)
				year = expandTwoDigitYear(year)
			} else {
				year, rest, err = readDigits(rest, 4)
			}
			haveYear = true
		case 'M', 'L':
			if tok.width <= 2 {
				month, rest, err = readDigits(rest, 2)
			} else {
				month, rest, err = readMonthName(rest, n)
			}
			haveMonth = true
		case 'd':
			day, rest, err = readDigits(rest, 2)
			haveDay = true
		case 'E':
			rest, err = skipWeekdayName(rest, n)
		}
		if err != nil {
			return 0, mismatch(value, pattern)
		}
	}

	if rest != "" || !haveYear || !haveMonth || !haveDay {
		return 0, mismatch(value, pattern)
	}
	return newDate(year, month, day)
}

// ParseTriple builds a calendar date from separate day, month and year
// strings. The month may be numeric or a month name in lang or English.
func ParseTriple(day, month, year, lang string) (datetime.CalendarDate, error) {
	day, month, year = strings.TrimSpace(day), strings.TrimSpace(month), strings.TrimSpace(year)

	d, err := strconv.Atoi(day)
	if err != nil {
		return 0, fmt.Errorf("%w: day %q", ErrInvalidDate, day)
	}

	var m datetime.Month
	if month == "" {
		return 0, fmt.Errorf("%w: empty month", ErrInvalidDate)
	}
	if v, rest, err := readMonthName(month, namesFor(lang)); err == nil && rest == "" {
		m = datetime.Month(v)
	} else if err := m.Parse(month); err != nil {
		return 0, fmt.Errorf("%w: month %q", ErrInvalidDate, month)
	}

	if !isDigits(year) {
		return 0, fmt.Errorf("%w: year %q", ErrInvalidDate, year)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return 0, fmt.Errorf("%w: year %q", ErrInvalidDate, year)
	}
	return newDate(y, int(m), d)
}

func newDate(year, month, day int) (datetime.CalendarDate, error) {
	if year < 1 || year > MaxYear {
		return 0, fmt.Errorf("%w: year %d out of range", ErrInvalidDate, year)
	}
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: month %d out of range", ErrInvalidDate, month)
	}
	if day < 1 || day > int(datetime.DaysInMonth(year, datetime.Month(month))) {
		return 0, fmt.Errorf("%w: day %d out of range for %04d-%02d", ErrInvalidDate, day, year, month)
	}
	return datetime.NewCalendarDate(year, datetime.Month(month), day), nil
}

func mismatch(value, pattern string) error {
	return fmt.Errorf("%w: %q does not match %q", ErrInvalidDate, value, pattern)
}

// readDigits consumes between one and maxLen leading digits.
func readDigits(s string, maxLen int) (int, string, error) {
	i := 0
	for i < len(s) && i < maxLen && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, ErrInvalidDate
	}
	v, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, err
	}
	return v, s[i:], nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// expandTwoDigitYear maps 00-69 to 2000-2069 and 70-99 to 1970-1999.
func expandTwoDigitYear(y int) int {
	if y < 70 {
		return 2000 + y
	}
	return 1900 + y
}

// readMonthName consumes the longest localized or English month name.
func readMonthName(s string, n names) (int, string, error) {
	best, bestLen := 0, 0
	try := func(list [12]string) {
		for i, name := range list {
			if len(name) > bestLen && hasPrefixFold(s, name) {
				best, bestLen = i+1, len(name)
			}
		}
	}
	try(n.months)
	try(n.monthsAbbr)
	en := localeNames[DefaultLanguage]
	try(en.months)
	try(en.monthsAbbr)
	if bestLen == 0 {
		return 0, s, ErrInvalidDate
	}
	return best, s[bestLen:], nil
}

func skipWeekdayName(s string, n names) (string, error) {
	bestLen := 0
	for _, list := range [][7]string{n.weekdays, n.weekdayAbbr} {
		for _, name := range list {
			if len(name) > bestLen && hasPrefixFold(s, name) {
				bestLen = len(name)
			}
		}
	}
	if bestLen == 0 {
		return s, ErrInvalidDate
	}
	return s[bestLen:], nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
