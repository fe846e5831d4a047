package openapi

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeriveID returns the document id for an operation: the kebab-cased
// operationId, else summary, path and method kebab-cased together, so
// operations sharing a summary on different paths stay distinct.
func DeriveID(op Operation) string {
	if op.OperationID != "" {
		return Kebab(op.OperationID)
	}
	return Kebab(op.Summary + " " + op.Path + " " + string(op.Method))
}

// Kebab lower-cases s and joins its words with hyphens. Words break on
// any non-alphanumeric rune, on lower-to-upper transitions, before the
// last capital of an acronym followed by lower case, and between letters
// and digits, so "record_t7_feedback" becomes "record-t-7-feedback".
func Kebab(s string) string {
	ws := splitWords(s)
	for i, w := range ws {
		ws[i] = strings.ToLower(w)
	}
	return strings.Join(ws, "-")
}

func splitWords(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// Humanize turns identifiers and paths into display labels:
// "list_pending" and "/hitl/pending" become "List Pending" and
// "Hitl Pending". Existing capitals are kept.
func Humanize(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '_', '-', '/', '{', '}', '.':
			return true
		}
		return unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return ""
	}
	caser := cases.Title(language.English, cases.NoLower)
	for i, f := range fields {
		fields[i] = caser.String(f)
	}
	return strings.Join(fields, " ")
}
