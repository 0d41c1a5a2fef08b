package parser

import (
	"fmt"
	"strings"
)

// SourceFile is one compilation unit: the file name from the project manifest
// and its full contents.
type SourceFile struct {
	Name    string
	Content string
}

// Labels is the two-tier label table. Global labels are visible to every
// file; local labels are rebuilt per file and only live for the duration of
// that file's second pass.
type Labels struct {
	globals map[string]int
	locals  map[string]int
}

// NewLabels creates an empty label table.
func NewLabels() *Labels {
	return &Labels{
		globals: make(map[string]int),
		locals:  make(map[string]int),
	}
}

// Lookup resolves a label name, consulting global labels before the current
// file's local labels.
func (l *Labels) Lookup(name string) (int, bool) {
	if idx, ok := l.globals[name]; ok {
		return idx, true
	}
	idx, ok := l.locals[name]
	return idx, ok
}

// fileScan is the result of one pass-1 walk over a single file.
type fileScan struct {
	locals       map[string]int
	globals      []globalDecl
	strings      []string
	stringLabels map[string]int
	endPC        int
}

type globalDecl struct {
	name string
	line int
}

// scanFile walks one file's lines, collecting label definitions (at the
// running instruction index), .global declarations, and interned .string
// literals bound to their most recent preceding label. Lines that compile to
// an instruction advance the index by one; labels, directives, comments and
// IT statements do not.
func scanFile(file SourceFile, startPC int, errs *CompileErr) fileScan {
	scan := fileScan{
		locals:       make(map[string]int),
		stringLabels: make(map[string]int),
		endPC:        startPC,
	}
	recentLabel := ""

	errs.SetFile(file.Name)
	for i, raw := range strings.Split(file.Content, "\n") {
		errs.SetLine(i + 1)
		trimmed := PreprocessLine(raw)
		line := strings.ToLower(trimmed)

		switch {
		case line == "":
			// blank or comment-only
		case strings.HasPrefix(line, ".string"):
			// Intern the literal (verbatim contents from the original
			// casing) and bind the preceding label to its pool slot.
			text, ok := stringDirective(trimmed)
			if !ok {
				errs.Push("Invalid .string declaration, expected .string \"text\".")
				continue
			}
			if recentLabel != "" {
				scan.stringLabels[recentLabel] = len(scan.strings)
			}
			scan.strings = append(scan.strings, text)
		case strings.HasPrefix(line, ".global"):
			name, ok := globalDirective(line)
			if !ok {
				errs.Push("Invalid .global declaration, expected .global name.")
				continue
			}
			scan.globals = append(scan.globals, globalDecl{name: name, line: i + 1})
		case strings.HasPrefix(line, "."):
			// other directives are silently skipped
		case strings.HasSuffix(line, ":"):
			if !IsLabelDefinition(line) {
				errs.Push(fmt.Sprintf("%q is not a valid label.", trimmed))
				continue
			}
			name := strings.TrimSuffix(line, ":")
			scan.locals[name] = scan.endPC
			recentLabel = name
		case IsIfThenBlock(line):
			// IT statements govern later instructions but occupy no slot
		default:
			scan.endPC++
		}
	}
	return scan
}

// ScanGlobals runs pass 1 over every file to build the global label table.
// Each .global declaration promotes a label defined in the same file;
// duplicates and declarations naming an undefined label are diagnostics.
// Errors accumulate into errs without aborting the scan.
func ScanGlobals(files []SourceFile, errs *CompileErr) *Labels {
	labels := NewLabels()

	pc := 0
	for _, file := range files {
		scan := scanFile(file, pc, errs)
		pc = scan.endPC

		errs.SetFile(file.Name)
		for _, decl := range scan.globals {
			errs.SetLine(decl.line)
			idx, defined := scan.locals[decl.name]
			if !defined {
				errs.Push(fmt.Sprintf("Global label %q is not defined in this file.", decl.name))
				continue
			}
			if _, dup := labels.globals[decl.name]; dup {
				errs.Push(fmt.Sprintf("Global label %q is already defined.", decl.name))
				continue
			}
			labels.globals[decl.name] = idx
		}
	}
	return labels
}

// ScanLocals re-runs pass 1 over a single file immediately before its second
// pass, replacing the local tier with this file's labels. It returns the
// file's interned string literals and the label-to-slot bindings (slots are
// relative to the returned strings; the caller offsets them into the shared
// pool). pc is the running instruction index across all files and is advanced
// past this file. Diagnostics were already reported by ScanGlobals, so this
// walk discards them.
func (l *Labels) ScanLocals(file SourceFile, pc *int) ([]string, map[string]int) {
	scan := scanFile(file, *pc, &CompileErr{})
	l.locals = scan.locals
	*pc = scan.endPC
	return scan.strings, scan.stringLabels
}
