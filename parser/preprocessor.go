package parser

import (
	"regexp"
	"strings"
)

var (
	reIfThen   = regexp.MustCompile(`^it[te]{0,3}\s+\w+$`)
	reLabelDef = regexp.MustCompile(`^[a-zA-Z_]\w*:$`)
	reGlobal   = regexp.MustCompile(`^\.global\s+(\w+)$`)
	reString   = regexp.MustCompile(`(?i)^\.string\s+"(.*)"`)
)

// PreprocessLine strips a trailing // comment and surrounding whitespace.
func PreprocessLine(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

// IsIfThenBlock reports whether the (lowercased, preprocessed) line is an IT
// statement: "it" followed by up to three t/e letters and a condition code.
func IsIfThenBlock(line string) bool {
	return reIfThen.MatchString(line)
}

// IsLabelDefinition reports whether the line is a well-formed label
// definition ("name:" on its own line).
func IsLabelDefinition(line string) bool {
	return reLabelDef.MatchString(line)
}

// globalDirective extracts the label name of a ".global name" directive.
func globalDirective(line string) (string, bool) {
	m := reGlobal.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// stringDirective extracts the quoted contents of a `.string "…"` directive.
// The contents are taken verbatim up to the closing quote.
func stringDirective(line string) (string, bool) {
	m := reString.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
