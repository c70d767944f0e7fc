// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package datefield

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"github.com/olegiv/ocms-fields/internal/form"
)

// DefaultYearSpan is the number of years offered before and after the
// current year when no range or bounds are configured.
const DefaultYearSpan = 99

// YearRange returns the first and last year of the year dropdown. An explicit
// range option wins, then the min and max bounds, then the default window
// around the current year.
func (f *Field) YearRange() (from, to int) {
	if r, ok := f.opts.Get(OptRange); ok {
		var err error
		if from, to, err = parseRange(r); err == nil {
			return from, to
		}
		f.logger.Warn("ignoring year range", "field", f.Name(), "range", r, "error", err)
	}

	year := f.today().Year()
	from, to = year-DefaultYearSpan, year+DefaultYearSpan
	if minDate, ok := f.bound(OptMin); ok {
		from = minDate.Year()
	}
	if maxDate, ok := f.bound(OptMax); ok {
		to = maxDate.Year()
	}
	if from > to {
		f.logger.Warn("date bounds give an empty year range, swapping",
			"field", f.Name(), "from", from, "to", to)
		from, to = to, from
	}
	return from, to
}

func parseRange(r string) (int, int, error) {
	bits := strings.Split(r, "-")
	if len(bits) != 2 {
		return 0, 0, fmt.Errorf("range %q is not from-to", r)
	}
	from, err := strconv.Atoi(strings.TrimSpace(bits[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("range start: %w", err)
	}
	to, err := strconv.Atoi(strings.TrimSpace(bits[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("range end: %w", err)
	}
	if from > to {
		from, to = to, from
	}
	return from, to, nil
}

// FragmentOrder returns the part keys in the order their first letter (d, m
// or y, any case) appears in format. Parts whose letter is missing follow
// in day, month, year order.
func FragmentOrder(format string) []string {
	lower := strings.ToLower(format)
	pos := make(map[string]int, len(parts))
	for i, key := range parts {
		idx := strings.IndexByte(lower, key[0])
		if idx < 0 {
			idx = len(lower) + i
		}
		pos[key] = idx
	}

	order := append([]string(nil), parts...)
	sort.SliceStable(order, func(i, j int) bool {
		return pos[order[i]] < pos[order[j]]
	})
	return order
}

func (f *Field) dropdown(ctx form.RenderContext, key string) form.Dropdown {
	var options []form.Option
	switch key {
	case PartDay:
		options = numberOptions(1, 31)
	case PartMonth:
		options = numberOptions(1, 12)
	case PartYear:
		from, to := f.YearRange()
		options = make([]form.Option, 0, to-from+1)
		for y := to; y >= from; y-- {
			s := strconv.Itoa(y)
			options = append(options, form.Option{Value: s, Label: s})
		}
	}
	options = append([]form.Option{{Value: NotSet, Label: ctx.Translate("field." + key)}}, options...)

	selected, _ := f.raw.Lookup(key)
	return form.Dropdown{
		Name:     f.Name() + "[" + key + "]",
		Options:  options,
		Selected: selected,
		Classes:  append([]string{key}, f.ExtraClasses()...),
	}
}

func numberOptions(from, to int) []form.Option {
	out := make([]form.Option, 0, to-from+1)
	for i := from; i <= to; i++ {
		s := fmt.Sprintf("%02d", i)
		out = append(out, form.Option{Value: s, Label: s})
	}
	return out
}

// Dropdowns returns the day, month and year dropdowns in display order.
func (f *Field) Dropdowns(ctx form.RenderContext) []form.Dropdown {
	order := FragmentOrder(f.opts.Value(OptDateFormat))
	out := make([]form.Dropdown, len(order))
	for i, key := range order {
		out[i] = f.dropdown(ctx, key)
	}
	return out
}

// Fragments renders the dropdowns in display order.
func (f *Field) Fragments(ctx form.RenderContext) ([]template.HTML, error) {
	dropdowns := f.Dropdowns(ctx)
	out := make([]template.HTML, len(dropdowns))
	for i, d := range dropdowns {
		h, err := d.Render()
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

var wrapperTmpl = template.Must(template.New("dropdowndate").Parse(
	`<div class="dropdowndate{{range .Classes}} {{.}}{{end}}" id="{{.ID}}"{{.Attrs}}>{{.Body}}</div>`))

// Render implements form.Field. The dropdowns are joined with dmyseparator
// and wrapped in an element carrying the dateformat, min and max options
// as data attributes.
func (f *Field) Render(ctx form.RenderContext) (template.HTML, error) {
	fragments, err := f.Fragments(ctx)
	if err != nil {
		return "", err
	}

	sep := f.opts.Value(OptDMYSeparator)
	var body strings.Builder
	for i, frag := range fragments {
		if i > 0 {
			body.WriteString(sep)
		}
		body.WriteString(string(frag))
	}

	attrs := f.Attributes()
	attrs["data-isodateformat"] = f.opts.Value(OptDateFormat)
	attrs["data-min"] = f.opts.Value(OptMin)
	attrs["data-max"] = f.opts.Value(OptMax)

	data := struct {
		ID      string
		Classes []string
		Attrs   template.HTMLAttr
		Body    template.HTML
	}{
		ID:      f.ID(),
		Classes: f.ExtraClasses(),
		Attrs:   form.RenderAttributes(attrs),
		// dmyseparator is trusted configuration markup.
		Body: template.HTML(body.String()),
	}

	var buf bytes.Buffer
	if err := wrapperTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering date field %s: %w", f.Name(), err)
	}
	return template.HTML(buf.String()), nil
}
