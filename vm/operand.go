package vm

import (
	"strconv"
	"strings"
)

// Value is a constant or a register reference. Register 0 means constant.
type Value struct {
	Register byte
	Constant int
}

// IsRegister reports whether the value names a register.
func (v Value) IsRegister() bool {
	return v.Register != 0
}

func (v Value) String() string {
	if v.IsRegister() {
		return string(v.Register)
	}
	return strconv.Itoa(v.Constant)
}

// CondOp is a comparison operator. COND_NONE marks a bare-operand
// condition, true iff the operand is non-zero.
type CondOp int

const (
	COND_NONE = CondOp(0) // (bare operand)
	COND_GT   = CondOp(1) // >
	COND_LT   = CondOp(2) // <
	COND_EQ   = CondOp(3) // =
	COND_GE   = CondOp(4) // >=
	COND_LE   = CondOp(5) // <=
	COND_NE   = CondOp(6) // !=
)

var condOpNames = map[CondOp]string{
	COND_GT: ">",
	COND_LT: "<",
	COND_EQ: "=",
	COND_GE: ">=",
	COND_LE: "<=",
	COND_NE: "!=",
}

// Operator spellings accepted by the parser. Serialization always emits
// the canonical ASCII form.
var condOpAliases = map[string]CondOp{
	">":  COND_GT,
	"<":  COND_LT,
	"=":  COND_EQ,
	"==": COND_EQ,
	">=": COND_GE,
	"≥":  COND_GE,
	"<=": COND_LE,
	"≤":  COND_LE,
	"!=": COND_NE,
	"≠":  COND_NE,
	"<>": COND_NE,
}

func (op CondOp) String() string {
	name, ok := condOpNames[op]
	if !ok {
		return ""
	}
	return name
}

// CondOpByName resolves an operator spelling, including the unicode and
// alternate ASCII aliases.
func CondOpByName(name string) (op CondOp, ok bool) {
	op, ok = condOpAliases[name]
	return
}

// Holds reports whether the comparison lhs op rhs is true.
func (op CondOp) Holds(lhs, rhs int) bool {
	switch op {
	case COND_GT:
		return lhs > rhs
	case COND_LT:
		return lhs < rhs
	case COND_EQ:
		return lhs == rhs
	case COND_GE:
		return lhs >= rhs
	case COND_LE:
		return lhs <= rhs
	case COND_NE:
		return lhs != rhs
	}
	return false
}

// Condition is a bare operand (Op == COND_NONE) or a comparison of two
// operands.
type Condition struct {
	Lhs Value
	Op  CondOp
	Rhs Value
}

// Bare reports whether the condition is a single non-zero test.
func (cond Condition) Bare() bool {
	return cond.Op == COND_NONE
}

func (cond Condition) String() string {
	if cond.Bare() {
		return cond.Lhs.String()
	}
	return cond.Lhs.String() + " " + cond.Op.String() + " " + cond.Rhs.String()
}

// Evaluate resolves the condition against the bank. A bare condition is
// true iff its operand is non-zero. Register reads go through the bank and
// propagate its faults.
func (cond Condition) Evaluate(bank *Bank) (result bool, err error) {
	lhs, err := bank.Resolve(cond.Lhs)
	if err != nil {
		return
	}
	if cond.Bare() {
		result = lhs != 0
		return
	}
	rhs, err := bank.Resolve(cond.Rhs)
	if err != nil {
		return
	}
	result = cond.Op.Holds(lhs, rhs)
	return
}

// OperandKind discriminates the payload of an Operand.
type OperandKind int

const (
	OPERAND_NONE  = OperandKind(0)
	OPERAND_VALUE = OperandKind(1)
	OPERAND_COND  = OperandKind(2)
	OPERAND_LABEL = OperandKind(3)
)

// Operand is one bound argument slot of an instruction.
type Operand struct {
	Kind  OperandKind
	Value Value
	Cond  Condition
	Label string
	// Target is the instruction index a label operand resolved to.
	Target int
}

func (arg Operand) String() string {
	switch arg.Kind {
	case OPERAND_VALUE:
		return arg.Value.String()
	case OPERAND_COND:
		return arg.Cond.String()
	case OPERAND_LABEL:
		return arg.Label
	}
	return ""
}

// Instruction is one executable statement.
type Instruction struct {
	Op   Op
	Args [NUM_ARGS]Operand
	// Line is the 1-based source line the instruction came from.
	Line int
}

func (instr Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(instr.Op.String())
	for _, arg := range instr.Args {
		if arg.Kind == OPERAND_NONE {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(arg.String())
	}
	return sb.String()
}

// SameOperands reports whether both instructions read the same first two
// source operands, compared syntactically. DIV and REM over identical
// operands pair up for the shared-unit timing discount.
func (instr Instruction) SameOperands(other Instruction) bool {
	return instr.Args[0].Value == other.Args[0].Value &&
		instr.Args[1].Value == other.Args[1].Value
}
