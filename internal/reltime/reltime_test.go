// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reltime

import (
	"errors"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	now := time.Date(2026, time.October, 16, 15, 30, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
	}

	tests := []struct {
		expr string
		want time.Time
	}{
		{"now", now},
		{"-7 days", day(2026, time.October, 9)},
		{"+7 days", day(2026, time.October, 23)},
		{"7 days", day(2026, time.October, 23)},
		{"1 year", day(2027, time.October, 16)},
		{"-1 year", day(2025, time.October, 16)},
		{"+2 weeks 3 days", day(2026, time.November, 2)},
		{"+1 year -1 day", day(2027, time.October, 15)},
		{"3 days ago", day(2026, time.October, 13)},
		{"1 month 2 days ago", day(2026, time.September, 14)},
		{"+1fortnight", day(2026, time.October, 30)},
		{"-3months", day(2026, time.July, 16)},
		{"+ 3 days", day(2026, time.October, 19)},
		{"- 3 days", day(2026, time.October, 13)},
		{"next month", day(2026, time.November, 16)},
		{"last year", day(2025, time.October, 16)},
		{"this week", now},
		{"2 hours", now.Add(2 * time.Hour)},
		{"90 minutes ago", now.Add(-90 * time.Minute)},
		{"tomorrow", time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)},
		{"today", time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)},
		{"noon", time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)},
		{"2010-03-31", time.Date(2010, time.March, 31, 0, 0, 0, 0, time.UTC)},
		{"2010-03-31 +1 day", time.Date(2010, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{"  +1   Year  ", day(2027, time.October, 16)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Resolve(tt.expr, now)
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.expr, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestResolveMonthOverflow(t *testing.T) {
	now := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	got, err := Resolve("+1 month", now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Resolve(+1 month) from Jan 31 = %v, want %v", got, want)
	}
}

func TestResolveErrors(t *testing.T) {
	now := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	for _, expr := range []string{
		"",
		"   ",
		"soon",
		"7",
		"-7",
		"7 parsecs",
		"next",
		"next banana",
		"+",
		"2010-13-45",
		"1 year and a day",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Resolve(expr, now)
			if !errors.Is(err, ErrUnrecognized) {
				t.Errorf("Resolve(%q) error = %v, want ErrUnrecognized", expr, err)
			}
		})
	}
}
