package resolver

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// prevMarker matches the previous-step marker. The trailing accessor chain is
// part of the marker and is consumed by the replacement: `$prev.id` injects
// the entire serialized previous output, not the `id` field. This mirrors the
// engine's observable behavior and must not be "fixed" into field extraction.
var prevMarker = regexp.MustCompile(`\$prev(?:\.[A-Za-z0-9_]+)*`)

// stepMarker builds the named-step marker pattern for one recorded step.
// Trailing accessors are consumed the same way as for $prev.
func stepMarker(name string) *regexp.Regexp {
	return regexp.MustCompile(`\$steps\.` + regexp.QuoteMeta(name) + `(?:\.[A-Za-z0-9_]+)*`)
}

// Substitute rewrites value by replacing markers with data from the execution
// context. It is pure and recursive: strings get the three replacement passes,
// maps and arrays recurse into their values, everything else passes through
// unchanged. Substitution never fails: text that looks like JSON after
// replacement but does not parse is kept as a plain string.
func Substitute(value interface{}, ctx *ExecutionContext) interface{} {
	switch v := value.(type) {
	case string:
		return substituteString(v, ctx)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[key] = Substitute(val, ctx)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = Substitute(val, ctx)
		}
		return out
	default:
		return value
	}
}

// substituteString applies the three replacement passes in their fixed order:
// previous-step marker, named-step markers, input-field markers. If the
// substituted text begins with '{' or '[' and differs from the original, it
// is re-parsed as structured data; parse failures degrade to the raw string.
func substituteString(s string, ctx *ExecutionContext) interface{} {
	out := s

	if prev, ok := ctx.Previous(); ok {
		if serialized, ok := serialize(prev); ok {
			out = prevMarker.ReplaceAllLiteralString(out, serialized)
		}
	}

	for _, name := range ctx.StepNames() {
		if !strings.Contains(out, "$steps."+name) {
			continue
		}
		output, _ := ctx.StepOutput(name)
		if serialized, ok := serialize(output); ok {
			out = stepMarker(name).ReplaceAllLiteralString(out, serialized)
		}
	}

	out = substituteInputFields(out, ctx.Input())

	if out == s {
		return s
	}
	if strings.HasPrefix(out, "{") || strings.HasPrefix(out, "[") {
		var parsed interface{}
		if err := json.Unmarshal([]byte(out), &parsed); err == nil {
			return parsed
		}
	}
	return out
}

// substituteInputFields replaces every `$input.<field>` occurrence with the
// field's value from the original input: raw text when the field is a string,
// JSON otherwise. Longer field names are replaced first so a field named
// "user" cannot clobber occurrences of "$input.userId".
func substituteInputFields(s string, input map[string]interface{}) string {
	if len(input) == 0 || !strings.Contains(s, "$input.") {
		return s
	}

	fields := make([]string, 0, len(input))
	for field := range input {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool {
		if len(fields[i]) != len(fields[j]) {
			return len(fields[i]) > len(fields[j])
		}
		return fields[i] < fields[j]
	})

	for _, field := range fields {
		marker := "$input." + field
		if !strings.Contains(s, marker) {
			continue
		}
		if text, ok := input[field].(string); ok {
			s = strings.ReplaceAll(s, marker, text)
			continue
		}
		if serialized, ok := serialize(input[field]); ok {
			s = strings.ReplaceAll(s, marker, serialized)
		}
	}
	return s
}

// serialize renders a step output or input field as its JSON text.
func serialize(value interface{}) (string, bool) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// AsText renders a substituted value for use in a textual position such as a
// path, header, or query value: strings pass through, everything else is
// JSON-serialized.
func AsText(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	serialized, ok := serialize(value)
	if !ok {
		return ""
	}
	return serialized
}
