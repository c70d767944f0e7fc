// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package reltime resolves free-form relative time expressions such as
// "-7 days", "1 year", "+2 weeks 3 days", "3 days ago", "next month",
// "tomorrow" or an absolute "2010-03-31" against a reference time.
package reltime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnrecognized is returned for expressions that contain no recognizable
// term or leftover text.
var ErrUnrecognized = errors.New("unrecognized relative time expression")

type unit int

const (
	unitSecond unit = iota
	unitMinute
	unitHour
	unitDay
	unitWeek
	unitFortnight
	unitMonth
	unitYear
)

var units = map[string]unit{
	"sec": unitSecond, "secs": unitSecond, "second": unitSecond, "seconds": unitSecond,
	"min": unitMinute, "mins": unitMinute, "minute": unitMinute, "minutes": unitMinute,
	"hour": unitHour, "hours": unitHour,
	"day": unitDay, "days": unitDay,
	"week": unitWeek, "weeks": unitWeek,
	"fortnight": unitFortnight, "fortnights": unitFortnight,
	"month": unitMonth, "months": unitMonth,
	"year": unitYear, "years": unitYear,
}

// offset is an accumulated relative movement.
type offset struct {
	years, months, days int
	dur                 time.Duration
}

func (o *offset) add(u unit, n int) {
	switch u {
	case unitSecond:
		o.dur += time.Duration(n) * time.Second
	case unitMinute:
		o.dur += time.Duration(n) * time.Minute
	case unitHour:
		o.dur += time.Duration(n) * time.Hour
	case unitDay:
		o.days += n
	case unitWeek:
		o.days += 7 * n
	case unitFortnight:
		o.days += 14 * n
	case unitMonth:
		o.months += n
	case unitYear:
		o.years += n
	}
}

func (o *offset) negate() {
	o.years, o.months, o.days, o.dur = -o.years, -o.months, -o.days, -o.dur
}

// Resolve evaluates expr relative to now. Month and year arithmetic follows
// time.AddDate, so "+1 month" from January 31 lands in early March.
func Resolve(expr string, now time.Time) (time.Time, error) {
	fields := strings.Fields(strings.ToLower(expr))
	if len(fields) == 0 {
		return time.Time{}, fmt.Errorf("%w: empty", ErrUnrecognized)
	}

	base := now
	var off offset

	for i := 0; i < len(fields); i++ {
		f := fields[i]
		switch f {
		case "now":
			continue
		case "today", "midnight":
			base = midnight(base)
			continue
		case "noon":
			base = midnight(base).Add(12 * time.Hour)
			continue
		case "tomorrow":
			base = midnight(base).AddDate(0, 0, 1)
			continue
		case "yesterday":
			base = midnight(base).AddDate(0, 0, -1)
			continue
		case "ago":
			off.negate()
			continue
		case "next", "last", "previous", "this":
			if i+1 >= len(fields) {
				return time.Time{}, fmt.Errorf("%w: %q needs a unit", ErrUnrecognized, f)
			}
			u, ok := units[fields[i+1]]
			if !ok {
				return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, fields[i+1])
			}
			switch f {
			case "next":
				off.add(u, 1)
			case "last", "previous":
				off.add(u, -1)
			}
			i++
			continue
		}

		if t, err := time.ParseInLocation(time.DateOnly, f, now.Location()); err == nil {
			base = t
			continue
		}

		n, u, consumed, err := parseTerm(fields[i:])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, expr)
		}
		off.add(u, n)
		i += consumed - 1
	}

	t := base.AddDate(off.years, off.months, off.days)
	return t.Add(off.dur), nil
}

// parseTerm reads "N unit", "+N unit", "-N unit" or the joined forms "+Nunit"
// and "-Nunits". It returns the number of fields consumed.
func parseTerm(fields []string) (int, unit, int, error) {
	f := fields[0]
	numEnd := 0
	if numEnd < len(f) && (f[numEnd] == '+' || f[numEnd] == '-') {
		numEnd++
	}
	for numEnd < len(f) && f[numEnd] >= '0' && f[numEnd] <= '9' {
		numEnd++
	}

	numText := f[:numEnd]
	if numText == "+" || numText == "-" {
		// "+ 3 days"
		if len(fields) < 2 {
			return 0, 0, 0, ErrUnrecognized
		}
		n, u, consumed, err := parseTerm(fields[1:])
		if err != nil {
			return 0, 0, 0, err
		}
		if numText == "-" {
			n = -n
		}
		return n, u, consumed + 1, nil
	}

	n := 1
	if numText != "" {
		v, err := strconv.Atoi(strings.TrimPrefix(numText, "+"))
		if err != nil {
			return 0, 0, 0, ErrUnrecognized
		}
		n = v
	}

	if rest := f[numEnd:]; rest != "" {
		u, ok := units[rest]
		if !ok {
			return 0, 0, 0, ErrUnrecognized
		}
		return n, u, 1, nil
	}

	if numText == "" || len(fields) < 2 {
		return 0, 0, 0, ErrUnrecognized
	}
	u, ok := units[fields[1]]
	if !ok {
		return 0, 0, 0, ErrUnrecognized
	}
	return n, u, 2, nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
