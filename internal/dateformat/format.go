// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dateformat

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloudeng.io/datetime"
)

// Format renders date with the given pattern. Month and weekday names are
// taken from lang.
func Format(date datetime.CalendarDate, pattern, lang string) string {
	n := namesFor(lang)
	var sb strings.Builder
	for _, tok := range tokenize(pattern) {
		if tok.kind == tokenLiteral {
			sb.WriteString(tok.text)
			continue
		}
		switch tok.letter {
		case 'y', 'Y':
			if tok.width == 2 {
				fmt.Fprintf(&sb, "%02d", date.Year()%100)
			} else {
				sb.WriteString(pad(date.Year(), tok.width))
			}
		case 'M', 'L':
			m := int(date.Month())
			switch {
			case tok.width <= 2:
				sb.WriteString(pad(m, tok.width))
			case m < 1 || m > 12:
				sb.WriteString(strconv.Itoa(m))
			case tok.width == 3:
				sb.WriteString(n.monthsAbbr[m-1])
			default:
				sb.WriteString(n.months[m-1])
			}
		case 'd':
			sb.WriteString(pad(date.Day(), min(tok.width, 2)))
		case 'E':
			wd := ToTime(date, time.UTC).Weekday()
			if tok.width >= 4 {
				sb.WriteString(n.weekdays[wd])
			} else {
				sb.WriteString(n.weekdayAbbr[wd])
			}
		}
	}
	return sb.String()
}

func pad(v, width int) string {
	s := strconv.Itoa(v)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// Triple returns the zero padded day and month and the decimal year of date,
// matching the option values of day/month/year selectors.
func Triple(date datetime.CalendarDate) (day, month, year string) {
	return pad(date.Day(), 2), pad(int(date.Month()), 2), strconv.Itoa(date.Year())
}

// FromTime returns the calendar date of t in t's location.
func FromTime(t time.Time) datetime.CalendarDate {
	return datetime.NewCalendarDateFromTime(t)
}

// ToTime returns midnight of date in loc.
func ToTime(date datetime.CalendarDate, loc *time.Location) time.Time {
	return time.Date(date.Year(), time.Month(date.Month()), date.Day(), 0, 0, 0, 0, loc)
}

// Compare returns -1 if a is before b, 1 if a is after b and 0 if both are
// the same day. Calendar dates pack year, month and day from the high bits
// down, so they order numerically.
func Compare(a, b datetime.CalendarDate) int {
	return cmp.Compare(a, b)
}
