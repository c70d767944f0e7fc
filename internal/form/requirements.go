// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"html"
	"html/template"
	"slices"
	"strings"
)

// Requirements collects the scripts that fields need on the page: external
// script files and inline scripts. Scripts registered under the same key,
// and files with the same URL, are included once.
type Requirements struct {
	keys    map[string]bool
	files   []string
	scripts []string
}

// NewRequirements returns an empty Requirements.
func NewRequirements() *Requirements {
	return &Requirements{keys: make(map[string]bool)}
}

// JavaScript registers an external script file.
func (r *Requirements) JavaScript(src string) {
	if src != "" && !slices.Contains(r.files, src) {
		r.files = append(r.files, src)
	}
}

// CustomScript registers script under key. An empty key uses the script
// itself as the key.
func (r *Requirements) CustomScript(key, script string) {
	if key == "" {
		key = script
	}
	if r.keys[key] {
		return
	}
	r.keys[key] = true
	r.scripts = append(r.scripts, script)
}

// Files returns the registered script files in registration order.
func (r *Requirements) Files() []string {
	return slices.Clone(r.files)
}

// Scripts returns the registered inline scripts in registration order.
func (r *Requirements) Scripts() []string {
	return slices.Clone(r.scripts)
}

// Render returns the script file tags followed by one <script> element
// holding all inline scripts. Scripts are produced by field code, not user
// input.
func (r *Requirements) Render() template.HTML {
	var sb strings.Builder
	for _, src := range r.files {
		sb.WriteString(`<script src="`)
		sb.WriteString(html.EscapeString(src))
		sb.WriteString(`"></script>`)
	}
	if len(r.scripts) > 0 {
		sb.WriteString("<script>")
		for _, s := range r.scripts {
			sb.WriteString("\n")
			sb.WriteString(strings.ReplaceAll(s, "</", `<\/`))
		}
		sb.WriteString("\n</script>")
	}
	return template.HTML(sb.String())
}
