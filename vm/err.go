package vm

import (
	"errors"

	"github.com/zrho-lang/zrho/translate"
)

var f = translate.From

var (
	// Load-time errors
	ErrDanglingLabel       = errors.New(f("label at end of program binds to nothing"))
	ErrIncompleteCondition = errors.New(f("a constant or register must follow a comparison operator"))

	// Run-time faults
	ErrDivisionByZero = errors.New(f("division by zero"))
)

// ErrLoad is a single load-time error with its source location. A failed
// parse reports every ErrLoad found, not just the first.
type ErrLoad struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrLoad) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrLoad) Unwrap() error {
	return err.Err
}

// ErrUnknownInstruction reports a mnemonic that names no instruction.
type ErrUnknownInstruction string

func (err ErrUnknownInstruction) Error() string {
	return f("no such instruction '%v'", string(err))
}

// ErrUnsupportedOp reports an instruction absent from the active machine.
type ErrUnsupportedOp string

func (err ErrUnsupportedOp) Error() string {
	return f("instruction '%v' not supported on this machine", string(err))
}

// ErrUnsupportedRegister reports a register absent from the active machine.
type ErrUnsupportedRegister byte

func (err ErrUnsupportedRegister) Error() string {
	return f("register '%c' not supported on this machine", byte(err))
}

// ErrArity reports a wrong operand count.
type ErrArity struct {
	Got int
	Min int
	Max int
}

func (err ErrArity) Error() string {
	if err.Got < err.Min {
		return f("not enough operands (got %d, minimum %d)", err.Got, err.Min)
	}
	return f("too many operands (got %d, maximum %d)", err.Got, err.Max)
}

// ErrOperandType reports an operand of the wrong shape for its slot.
type ErrOperandType struct {
	Got      string
	Expected ArgReq
}

func (err ErrOperandType) Error() string {
	return f("got '%v', expected %v", err.Got, err.Expected)
}

// ErrUndefinedLabel reports a jump to a label no LBL defines.
type ErrUndefinedLabel string

func (err ErrUndefinedLabel) Error() string {
	return f("no such label '%v'", string(err))
}

// ErrDuplicateLabel reports a label defined more than once.
type ErrDuplicateLabel string

func (err ErrDuplicateLabel) Error() string {
	return f("label '%v' defined more than once", string(err))
}

// ErrBadLabel reports a label with characters outside [_-a-zA-Z0-9].
type ErrBadLabel string

func (err ErrBadLabel) Error() string {
	return f("invalid label '%v', must contain only _, -, letters, and numbers", string(err))
}

// ErrConstantRange reports an immediate outside the machine's value range.
type ErrConstantRange struct {
	Token string
	Min   int
	Max   int
}

func (err ErrConstantRange) Error() string {
	return f("'%v' is outside this machine's range [%d, %d]", err.Token, err.Min, err.Max)
}

// ErrExpression reports a $() expression that did not evaluate to an integer.
type ErrExpression string

func (err ErrExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrOutOfBounds is the fault raised by a storage access whose effective
// index lies outside the array.
type ErrOutOfBounds struct {
	Register byte
	Index    int
}

func (err ErrOutOfBounds) Error() string {
	return f("register '%c' index %d out of bounds", err.Register, err.Index)
}

// ErrOutOfRange is the fault raised by writing a value the register cannot
// hold.
type ErrOutOfRange struct {
	Register byte
	Value    int64
}

func (err ErrOutOfRange) Error() string {
	return f("value %d does not fit register '%c'", err.Value, err.Register)
}

// ErrNoSuchRegister is the fault raised by accessing a register the bank
// does not hold.
type ErrNoSuchRegister byte

func (err ErrNoSuchRegister) Error() string {
	return f("no such register '%c'", byte(err))
}

// ErrRuntime wraps a fault with the source line of the faulting instruction.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err ErrRuntime) Error() string {
	return f("line %d: %v", err.LineNo, err.Err)
}

func (err ErrRuntime) Unwrap() error {
	return err.Err
}
