// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dateformat

import (
	"strings"

	"golang.org/x/text/language"
)

// names holds the localized month and weekday names for one language.
type names struct {
	months      [12]string
	monthsAbbr  [12]string
	weekdays    [7]string // Sunday first, like time.Weekday
	weekdayAbbr [7]string
}

var localeNames = map[string]names{
	"en": {
		months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		monthsAbbr: [12]string{
			"Jan", "Feb", "Mar", "Apr", "May", "Jun",
			"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
		},
		weekdays:    [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		weekdayAbbr: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	},
	// Russian months in genitive case, as used in "d MMMM y".
	"ru": {
		months: [12]string{
			"января", "февраля", "марта", "апреля", "мая", "июня",
			"июля", "августа", "сентября", "октября", "ноября", "декабря",
		},
		monthsAbbr: [12]string{
			"янв.", "февр.", "мар.", "апр.", "мая", "июн.",
			"июл.", "авг.", "сент.", "окт.", "нояб.", "дек.",
		},
		weekdays:    [7]string{"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"},
		weekdayAbbr: [7]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"},
	},
	"de": {
		months: [12]string{
			"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember",
		},
		monthsAbbr: [12]string{
			"Jan.", "Feb.", "März", "Apr.", "Mai", "Juni",
			"Juli", "Aug.", "Sept.", "Okt.", "Nov.", "Dez.",
		},
		weekdays:    [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		weekdayAbbr: [7]string{"So.", "Mo.", "Di.", "Mi.", "Do.", "Fr.", "Sa."},
	},
}

// defaultFormats are the medium date formats per base language.
var defaultFormats = map[string]string{
	"en": "MMM d, y",
	"ru": "dd.MM.y",
	"de": "dd.MM.y",
}

// DefaultLanguage is used when a language is unknown.
const DefaultLanguage = "en"

// baseLanguage reduces a locale such as "de_DE" or "en-NZ" to its base
// language code.
func baseLanguage(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return DefaultLanguage
	}
	base, _ := tag.Base()
	return base.String()
}

func namesFor(lang string) names {
	if n, ok := localeNames[baseLanguage(lang)]; ok {
		return n
	}
	return localeNames[DefaultLanguage]
}

// LocaleDefault returns the default display date format for a locale.
// Unknown locales get the English format.
func LocaleDefault(lang string) string {
	if f, ok := defaultFormats[baseLanguage(lang)]; ok {
		return f
	}
	return defaultFormats[DefaultLanguage]
}

// MonthName returns the full localized name of month (1-12).
func MonthName(lang string, month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return namesFor(lang).months[month-1]
}
