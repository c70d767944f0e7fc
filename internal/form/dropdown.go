// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"bytes"
	"fmt"
	"html/template"
)

// Option is one entry of a dropdown.
type Option struct {
	Value string
	Label string
}

// Dropdown renders a single <select> element.
type Dropdown struct {
	Name     string
	Options  []Option
	Selected string
	Classes  []string
	Disabled bool
}

var dropdownTmpl = template.Must(template.New("dropdown").Parse(
	`<select name="{{.Name}}" id="{{.ID}}" class="dropdown{{range .Classes}} {{.}}{{end}}"{{if .Disabled}} disabled="disabled"{{end}}>` +
		`{{range .Options}}<option value="{{.Value}}"{{if eq .Value $.Selected}} selected="selected"{{end}}>{{.Label}}</option>{{end}}` +
		`</select>`))

// ID returns the HTML id of the select element.
func (d Dropdown) ID() string {
	return FieldID(d.Name)
}

// Render renders the select element.
func (d Dropdown) Render() (template.HTML, error) {
	var buf bytes.Buffer
	if err := dropdownTmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("rendering dropdown %s: %w", d.Name, err)
	}
	return template.HTML(buf.String()), nil
}

// Values returns the option values in order.
func (d Dropdown) Values() []string {
	out := make([]string, len(d.Options))
	for i, o := range d.Options {
		out[i] = o.Value
	}
	return out
}
