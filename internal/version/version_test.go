// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name               string
		ver, commit, built string
		want               Info
	}{
		{
			name:   "injected",
			ver:    "v1.0.0",
			commit: "abc1234",
			built:  "2026-01-30T12:00:00Z",
			want:   Info{Version: "v1.0.0", GitCommit: "abc1234", BuildTime: "2026-01-30T12:00:00Z"},
		},
		{
			name: "zero values",
			want: Info{Version: "dev", GitCommit: "unknown", BuildTime: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.ver, tt.commit, tt.built); got != tt.want {
				t.Errorf("New() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v1.2.3", GitCommit: "abc1234", BuildTime: "2026-01-30T12:00:00Z"}
	want := "v1.2.3 (commit: abc1234, built: 2026-01-30T12:00:00Z)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestInfoIsRelease(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"v1.0.0", true},
		{"dev", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := (Info{Version: tt.version}).IsRelease(); got != tt.want {
			t.Errorf("IsRelease(%q) = %v, want %v", tt.version, got, tt.want)
		}
	}
}
