package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Regex fragments for the operand grammar. Lines are lowercased before
// matching, so only lowercase register names and shift operators appear here.
const (
	reRegister = `\s*(r\d+|sp|lr|pc)\s*`
	// Signed immediate: #12, #-12, #0x1f, #-0b1100
	reINumber = `\s*#-?(0b[01]+|0x[A-Fa-f\d]+|\d+)\s*`
	reLabel   = `\s*[a-zA-Z_]\w*\s*`
)

var (
	// Token scanner for GetAllNumbers. The middle alternative deliberately
	// over-matches malformed immediates (e.g. #afff) so they can be reported
	// instead of silently skipped.
	reTokens = regexp.MustCompile(reRegister + `|#[\da-fA-Fx]+|` + reINumber)

	reBin = regexp.MustCompile(`^#-?0b[01]+$`)
	reHex = regexp.MustCompile(`^#-?0x[A-Fa-f\d]+$`)
	reDec = regexp.MustCompile(`#-?\d+$`)
)

// GetAllNumbers scans a line and returns its operand tokens in order, one
// 32-bit value per register reference or immediate literal. Register names
// map to their indices (sp=13, lr=14, pc=15). Negative immediates wrap to
// their two's-complement representation. On any malformed or out-of-range
// token the error messages are returned instead.
func GetAllNumbers(line string) ([]uint32, []string) {
	var errors []string
	var numbers []uint32

	for _, mat := range reTokens.FindAllString(line, -1) {
		mat = strings.TrimSpace(mat)
		switch {
		case strings.HasPrefix(mat, "r"):
			n, err := strconv.ParseUint(mat[1:], 10, 32)
			if err != nil {
				errors = append(errors, fmt.Sprintf("Register %s is invalid, only registers r0 to r15 are allowed.", mat))
			} else if n > 15 {
				errors = append(errors, fmt.Sprintf("Register r%d is invalid, only registers r0 to r15 are allowed.", n))
			} else {
				numbers = append(numbers, uint32(n))
			}
		case mat == "sp":
			numbers = append(numbers, 13)
		case mat == "lr":
			numbers = append(numbers, 14)
		case mat == "pc":
			numbers = append(numbers, 15)
		default:
			// Immediate value, possibly negative.
			offset := 0
			negative := strings.HasPrefix(mat, "#-")
			if negative {
				offset = 1
			}

			var num uint64
			var err error
			switch {
			case reBin.MatchString(mat):
				num, err = strconv.ParseUint(mat[3+offset:], 2, 32)
			case reHex.MatchString(mat):
				num, err = strconv.ParseUint(mat[3+offset:], 16, 32)
			case reDec.MatchString(mat):
				num, err = strconv.ParseUint(mat[1+offset:], 10, 32)
			default:
				errors = append(errors, fmt.Sprintf("%s is not a valid immediate value.", mat))
				continue
			}
			if err != nil {
				errors = append(errors, fmt.Sprintf("Immediate value %s is out of bounds.", mat))
				continue
			}
			if negative {
				numbers = append(numbers, -uint32(num))
			} else {
				numbers = append(numbers, uint32(num))
			}
		}
	}

	if len(errors) > 0 {
		return nil, errors
	}
	return numbers, nil
}

// Operand-shape predicates. Each matches the whole line (mnemonic included)
// against one syntactic skeleton: the mnemonic token, whitespace, then the
// operand pattern. Memory-reference shapes require square brackets around the
// base-register group; pre-indexed forms carry a trailing "!".
var (
	reRdImmed     = regexp.MustCompile(`^\S+\s+` + reRegister + `,` + reINumber + `$`)
	reRdRm        = regexp.MustCompile(`^\S+\s+` + reRegister + `,` + reRegister + `$`)
	reRdRnImmed   = regexp.MustCompile(`^\S+\s+` + reRegister + `,` + reRegister + `,` + reINumber + `$`)
	reRdRnRm      = regexp.MustCompile(`^\S+\s+` + reRegister + `,` + reRegister + `,` + reRegister + `$`)
	reRtRn        = regexp.MustCompile(`^\S+\s+` + reRegister + `,\s*\[` + reRegister + `]$`)
	reRtRnImm     = regexp.MustCompile(`^\S+\s+` + reRegister + `,\s*\[` + reRegister + `,` + reINumber + `]$`)
	reRtRnImmPost = regexp.MustCompile(`^\S+\s+` + reRegister + `,\s*\[` + reRegister + `]\s*,` + reINumber + `$`)
	reRtRnImmPre  = regexp.MustCompile(`^\S+\s+` + reRegister + `,\s*\[` + reRegister + `,` + reINumber + `]!$`)
	reRtRnRm      = regexp.MustCompile(`^\S+\s+` + reRegister + `,\s*\[` + reRegister + `,` + reRegister + `]$`)
	reRtRnRmShift = regexp.MustCompile(`^\S+\s+` + reRegister + `,\s*\[` + reRegister + `,` + reRegister + `,\s*lsl\s*` + reINumber + `]$`)
	reRtEqLabel   = regexp.MustCompile(`^\S+\s+` + reRegister + `,\s*=` + reLabel + `$`)
	reRtEqImmed   = regexp.MustCompile(`^\S+\s+` + reRegister + `,\s*=` + reINumber + `$`)
	reIsLabel     = regexp.MustCompile(`^\S+\s+` + reLabel + `$`)
)

// IsRdImmed reports whether the line has the shape "op Rd, #imm".
func IsRdImmed(line string) bool { return reRdImmed.MatchString(line) }

// IsRdRm reports whether the line has the shape "op Rd, Rm".
func IsRdRm(line string) bool { return reRdRm.MatchString(line) }

// IsRdRnImmed reports whether the line has the shape "op Rd, Rn, #imm".
func IsRdRnImmed(line string) bool { return reRdRnImmed.MatchString(line) }

// IsRdRnRm reports whether the line has the shape "op Rd, Rn, Rm".
func IsRdRnRm(line string) bool { return reRdRnRm.MatchString(line) }

// IsRtRn reports whether the line has the shape "op Rt, [Rn]".
func IsRtRn(line string) bool { return reRtRn.MatchString(line) }

// IsRtRnImm reports whether the line has the shape "op Rt, [Rn, #imm]".
func IsRtRnImm(line string) bool { return reRtRnImm.MatchString(line) }

// IsRtRnImmPost reports whether the line has the post-indexed shape
// "op Rt, [Rn], #imm".
func IsRtRnImmPost(line string) bool { return reRtRnImmPost.MatchString(line) }

// IsRtRnImmPre reports whether the line has the pre-indexed shape
// "op Rt, [Rn, #imm]!".
func IsRtRnImmPre(line string) bool { return reRtRnImmPre.MatchString(line) }

// IsRtRnRm reports whether the line has the shape "op Rt, [Rn, Rm]".
func IsRtRnRm(line string) bool { return reRtRnRm.MatchString(line) }

// IsRtRnRmShift reports whether the line has the shape
// "op Rt, [Rn, Rm, lsl #k]".
func IsRtRnRmShift(line string) bool { return reRtRnRmShift.MatchString(line) }

// IsRtEqualLabel reports whether the line has the pseudo-load shape
// "ldr Rt, =label".
func IsRtEqualLabel(line string) bool { return reRtEqLabel.MatchString(line) }

// IsRtEqualImmed reports whether the line has the pseudo-load shape
// "ldr Rt, =#imm".
func IsRtEqualImmed(line string) bool { return reRtEqImmed.MatchString(line) }

// IsLabel reports whether the line has the shape "op label".
func IsLabel(line string) bool { return reIsLabel.MatchString(line) }
