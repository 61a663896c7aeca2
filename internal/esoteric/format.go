package esoteric

import (
	"strconv"
	"strings"
	"unicode"
)

// NoFormatMessage is returned for an empty or blank template.
const NoFormatMessage = "No format specified"

// Format renders parsed against a template. Runs of one repeated character
// that match a unit's format shorthand are replaced by that unit's value at a
// width equal to the run length; everything else is copied through.
//
// Matching ignores case unless the template contains both cases of the
// letter or the calendar defines shorthands differing only by case.
func Format(units []Unit, parsed ParsedTimestamp, template string) string {
	return NewCalendar(WorldCalendar{Units: units}).Format(parsed, template)
}

// Format is the package-level Format against an indexed calendar.
func (c *Calendar) Format(parsed ParsedTimestamp, template string) string {
	if strings.TrimSpace(template) == "" {
		return NoFormatMessage
	}

	used := make(map[rune]bool)
	for _, r := range template {
		used[r] = true
	}

	var b strings.Builder
	runes := []rune(template)
	for i := 0; i < len(runes); {
		r := runes[i]
		j := i + 1
		for j < len(runes) && runes[j] == r {
			j++
		}
		run := string(runes[i:j])
		if f, ok := c.fieldForRune(parsed, r, c.caseSensitive(r, used)); ok {
			b.WriteString(renderField(f, j-i))
		} else {
			b.WriteString(run)
		}
		i = j
	}
	return b.String()
}

// caseSensitive reports whether r must match a shorthand exactly.
func (c *Calendar) caseSensitive(r rune, used map[rune]bool) bool {
	lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
	if lower == upper {
		return true
	}
	if used[lower] && used[upper] {
		return true
	}
	return len(c.shorthands[lower]) > 1
}

func (c *Calendar) fieldForRune(parsed ParsedTimestamp, r rune, exact bool) (Field, bool) {
	for _, f := range parsed.fields {
		sh, ok := shorthandRune(f.FormatShorthand)
		if !ok {
			continue
		}
		if sh == r || (!exact && unicode.ToLower(sh) == unicode.ToLower(r)) {
			return f, true
		}
	}
	return Field{}, false
}

func renderField(f Field, width int) string {
	u := f.Unit
	if u == nil {
		return padValue(f.Value, width)
	}
	if u.IsHidden() {
		return ""
	}
	if f.CustomLabel != nil {
		return *f.CustomLabel
	}

	v := f.Value
	switch u.FormatMode {
	case ModeNameOneIndexed, ModeNumericOneIndexed:
		if v >= 0 {
			v++
		}
	}

	switch u.FormatMode {
	case ModeName, ModeNameOneIndexed:
		if width == 1 {
			return u.ShortName() + " " + strconv.FormatInt(v, 10)
		}
		return u.bucketName() + " " + padValue(v, width)
	default:
		return padValue(v, width)
	}
}

// padValue zero-pads the absolute value of v to width digits and keeps the
// sign in front.
func padValue(v int64, width int) string {
	digits := strconv.FormatInt(v, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if n := width - len(digits); n > 0 {
		digits = strings.Repeat("0", n) + digits
	}
	return sign + digits
}
