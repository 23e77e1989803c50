package vm

import (
	"maps"
	"slices"
	"strings"
)

// Source file extensions recognized as programs. The unicode spelling is
// canonical, the ASCII one exists for filesystems that mangle it.
const (
	EXTENSION       = ".zρ"
	EXTENSION_ASCII = ".zrho"
)

// IsProgramSource reports whether the file name carries a program extension.
func IsProgramSource(name string) bool {
	return strings.HasSuffix(name, EXTENSION) || strings.HasSuffix(name, EXTENSION_ASCII)
}

// Program is a parsed, label-resolved program. Labels map to the index of
// the instruction that immediately followed the LBL in the source.
type Program struct {
	Name         string
	Instructions []Instruction
	Labels       map[string]int
}

// Source serializes the program back to canonical text: one instruction per
// line, labels re-inserted before the instruction they bind to, comments and
// blank lines gone, operator aliases normalized. Parsing the result yields
// an equal program.
func (prog *Program) Source() string {
	at := map[int][]string{}
	for label, index := range prog.Labels {
		at[index] = append(at[index], label)
	}

	var sb strings.Builder
	for index, instr := range prog.Instructions {
		for _, label := range slices.Sorted(slices.Values(at[index])) {
			sb.WriteString("LBL ")
			sb.WriteString(label)
			sb.WriteByte('\n')
		}
		sb.WriteString(instr.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Equal reports whether both programs have the same instructions and labels,
// ignoring source line numbers.
func (prog *Program) Equal(other *Program) bool {
	if len(prog.Instructions) != len(other.Instructions) {
		return false
	}
	for i, instr := range prog.Instructions {
		if instr.Op != other.Instructions[i].Op || instr.Args != other.Instructions[i].Args {
			return false
		}
	}
	return maps.Equal(prog.Labels, other.Labels)
}
