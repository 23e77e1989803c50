package vm

import (
	"iter"
	"log"

	"github.com/zrho-lang/zrho/internal"
	"github.com/zrho-lang/zrho/machine"
)

// StepOutcome reports what a single Step did.
type StepOutcome int

const (
	STEP_CONTINUED = StepOutcome(0) // continued
	STEP_HALTED    = StepOutcome(1) // halted
)

var stepOutcomeNames = map[StepOutcome]string{
	STEP_CONTINUED: "continued",
	STEP_HALTED:    "halted",
}

func (outcome StepOutcome) String() string {
	name, ok := stepOutcomeNames[outcome]
	if !ok {
		return "unknown"
	}
	return name
}

// RunOutcome reports how a Run ended.
type RunOutcome int

const (
	RUN_HALTED          = RunOutcome(0) // halted
	RUN_BUDGET_EXCEEDED = RunOutcome(1) // step budget exceeded
)

var runOutcomeNames = map[RunOutcome]string{
	RUN_HALTED:          "halted",
	RUN_BUDGET_EXCEEDED: "step budget exceeded",
}

func (outcome RunOutcome) String() string {
	name, ok := runOutcomeNames[outcome]
	if !ok {
		return "unknown"
	}
	return name
}

// Computer executes one program on one machine profile, counting every tick.
type Computer struct {
	Verbose bool // If set, verbosely logs each executed instruction.

	Profile *machine.Profile
	Program *Program
	Bank    *Bank

	PC     int    // Index of the next instruction.
	Ticks  uint64 // Elapsed machine time.
	Halted bool

	// Previous executed instruction, for the DIV/REM pairing discount.
	prev    Instruction
	hasPrev bool
}

// NewComputer creates a reset computer for the program. The bank's clock is
// the computer's tick counter, so blocked-register stalls advance it
// directly.
func NewComputer(prog *Program, prof *machine.Profile) *Computer {
	c := &Computer{Profile: prof, Program: prog}
	c.Bank = NewBank(prof, &c.Ticks)
	return c
}

// Reset returns the computer to its initial state: all registers zero, no
// blocks, no elapsed time.
func (c *Computer) Reset() {
	c.PC = 0
	c.Ticks = 0
	c.Halted = false
	c.prev = Instruction{}
	c.hasPrev = false
	c.Bank.Reset()
}

// stepCost accumulates the access costs of one instruction. Stalls on
// blocked registers are not tracked here; they advance the tick counter
// directly through the bank.
type stepCost struct {
	read  uint64 // largest read cost among registers read
	write uint64 // summed write costs
	sleep uint64 // SLP duration
}

// Step executes one instruction. A fault halts the computer and leaves
// registers, PC, and ticks as they were when the fault was detected.
func (c *Computer) Step() (outcome StepOutcome, err error) {
	if c.Halted {
		outcome = STEP_HALTED
		return
	}
	// Running off the end of the program halts.
	if c.PC < 0 || c.PC >= len(c.Program.Instructions) {
		c.Halted = true
		outcome = STEP_HALTED
		return
	}

	instr := c.Program.Instructions[c.PC]
	if c.Verbose {
		log.Printf("%4d %8d: %v\n", c.PC, c.Ticks, instr)
	}

	var cost stepCost
	taken := true
	jump := -1

	switch instr.Op {
	case OP_SET:
		var v int
		v, err = c.resolve(instr.Args[1].Value, &cost)
		if err == nil {
			err = c.write(instr.Args[0].Value.Register, int64(v), &cost)
		}

	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_REM:
		err = c.arith(instr, &cost)

	case OP_NEG:
		var v int
		v, err = c.resolve(instr.Args[0].Value, &cost)
		if err == nil {
			err = c.write(instr.Args[0].Value.Register, -int64(v), &cost)
		}

	case OP_ODD:
		var v int
		v, err = c.resolve(instr.Args[0].Value, &cost)
		if err == nil {
			err = c.write(instr.Args[0].Value.Register, int64(euclidRem(v, 2)), &cost)
		}

	case OP_CMP:
		var result bool
		result, err = c.evalCond(instr.Args[0].Cond, &cost)
		if err == nil {
			value := int64(0)
			if result {
				value = 1
			}
			err = c.write(instr.Args[1].Value.Register, value, &cost)
		}

	case OP_TCP:
		var result bool
		result, err = c.evalCond(instr.Args[0].Cond, &cost)
		if err == nil && result {
			err = c.write(instr.Args[1].Value.Register, 1, &cost)
		}

	case OP_FCP:
		var result bool
		result, err = c.evalCond(instr.Args[0].Cond, &cost)
		if err == nil && !result {
			err = c.write(instr.Args[1].Value.Register, 0, &cost)
		}

	case OP_JMP:
		if instr.Args[0].Kind == OPERAND_COND {
			taken, err = c.evalCond(instr.Args[0].Cond, &cost)
		}
		if err == nil && taken {
			jump = instr.Args[1].Target
		}

	case OP_LJP, OP_UJP:
		taken, err = c.evalCond(instr.Args[0].Cond, &cost)
		if err == nil && taken {
			jump = instr.Args[1].Target
		}

	case OP_SLP:
		var v int
		v, err = c.resolve(instr.Args[0].Value, &cost)
		if err == nil && v > 0 {
			cost.sleep = uint64(v)
		}

	case OP_TRY:
		if spec, ok := c.Profile.Register(instr.Args[0].Value.Register); ok {
			if spec.ReadCost > cost.read {
				cost.read = spec.ReadCost
			}
		}

	case OP_TRW:
		if spec, ok := c.Profile.Register(instr.Args[0].Value.Register); ok {
			cost.write += spec.WriteCost
		}

	case OP_CLK:
		value := int64(c.Ticks)
		if instr.Args[1].Kind == OPERAND_VALUE {
			for i := 0; i < instr.Args[1].Value.Constant; i++ {
				value /= 10
			}
		}
		err = c.write(instr.Args[0].Value.Register, value, &cost)

	case OP_LBL:
		// Parse-time marker, nothing to execute.

	case OP_END:
		c.Halted = true
	}

	if err != nil {
		c.Halted = true
		err = &ErrRuntime{LineNo: instr.Line, Err: err}
		outcome = STEP_HALTED
		return
	}

	opCost, _ := c.Profile.CostOf(instr.Op.String())
	base := opCost.Base
	if !taken {
		base = opCost.NotTaken
	}
	if c.paired(instr) {
		base = opCost.Paired
	}
	c.Ticks += base + cost.read + cost.write + cost.sleep

	c.prev = instr
	c.hasPrev = true

	if jump >= 0 {
		c.PC = jump
	} else {
		c.PC += 1
	}

	if c.Halted {
		outcome = STEP_HALTED
	}
	return
}

// Run steps until the program halts, faults, or maxSteps instructions have
// executed. Exhausting the budget is a safety stop, not a fault.
func (c *Computer) Run(maxSteps int) (outcome RunOutcome, err error) {
	for steps := 0; steps < maxSteps; steps++ {
		var state StepOutcome
		state, err = c.Step()
		if err != nil {
			return
		}
		if state == STEP_HALTED {
			return
		}
	}
	outcome = RUN_BUDGET_EXCEEDED
	return
}

// resolve reads a value operand, folding its read cost into the step.
func (c *Computer) resolve(v Value, cost *stepCost) (value int, err error) {
	value, err = c.Bank.Resolve(v)
	if err != nil {
		return
	}
	c.chargeRead(v, cost)
	return
}

// evalCond evaluates a condition operand, folding its read costs into the
// step.
func (c *Computer) evalCond(cond Condition, cost *stepCost) (result bool, err error) {
	result, err = cond.Evaluate(c.Bank)
	if err != nil {
		return
	}
	c.chargeRead(cond.Lhs, cost)
	if !cond.Bare() {
		c.chargeRead(cond.Rhs, cost)
	}
	return
}

// chargeRead folds one operand's read cost into the step. Reads cost the
// maximum over the registers read, not the sum.
func (c *Computer) chargeRead(v Value, cost *stepCost) {
	if !v.IsRegister() {
		return
	}
	if spec, ok := c.Profile.Register(v.Register); ok && spec.ReadCost > cost.read {
		cost.read = spec.ReadCost
	}
}

// write stores a value into a register, folding its write cost into the
// step. The range check runs in 64 bits so oversized intermediates fault
// instead of wrapping.
func (c *Computer) write(name byte, value int64, cost *stepCost) (err error) {
	spec, ok := c.Profile.Register(name)
	if !ok {
		err = ErrNoSuchRegister(name)
		return
	}
	if value < int64(spec.Min) || value > int64(spec.Max) {
		err = ErrOutOfRange{Register: name, Value: value}
		return
	}
	err = c.Bank.Write(name, int(value))
	if err != nil {
		return
	}
	cost.write += spec.WriteCost
	return
}

// arith executes the three-operand arithmetic instructions.
func (c *Computer) arith(instr Instruction, cost *stepCost) (err error) {
	a, err := c.resolve(instr.Args[0].Value, cost)
	if err != nil {
		return
	}
	b, err := c.resolve(instr.Args[1].Value, cost)
	if err != nil {
		return
	}

	var r int64
	switch instr.Op {
	case OP_ADD:
		r = int64(a) + int64(b)
	case OP_SUB:
		r = int64(a) - int64(b)
	case OP_MUL:
		r = int64(a) * int64(b)
	case OP_DIV:
		if b == 0 {
			err = ErrDivisionByZero
			return
		}
		r = int64(euclidDiv(a, b))
	case OP_REM:
		if b == 0 {
			err = ErrDivisionByZero
			return
		}
		r = int64(euclidRem(a, b))
	}
	return c.write(instr.Args[2].Value.Register, r, cost)
}

// paired reports whether the instruction gets the shared divider discount:
// DIV right after REM (or REM right after DIV) over the same two operands.
func (c *Computer) paired(instr Instruction) bool {
	if !c.hasPrev {
		return false
	}
	var want Op
	switch instr.Op {
	case OP_DIV:
		want = OP_REM
	case OP_REM:
		want = OP_DIV
	default:
		return false
	}
	return c.prev.Op == want && instr.SameOperands(c.prev)
}

// euclidDiv returns the Euclidean quotient: the one whose remainder is
// non-negative.
func euclidDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		if b > 0 {
			q -= 1
		} else {
			q += 1
		}
	}
	return q
}

// euclidRem returns the Euclidean remainder, in [0, |b|).
func euclidRem(a, b int) int {
	r := a % b
	if r < 0 {
		if b > 0 {
			r += b
		} else {
			r -= b
		}
	}
	return r
}

// Snapshot is a copy of the observable machine state.
type Snapshot struct {
	Ticks  uint64
	PC     int
	Halted bool
	Values map[byte][]int
}

// Snapshot copies the current state for inspection.
func (c *Computer) Snapshot() Snapshot {
	values := map[byte][]int{}
	for name, cells := range c.Registers() {
		values[name] = cells
	}
	return Snapshot{Ticks: c.Ticks, PC: c.PC, Halted: c.Halted, Values: values}
}

// Registers iterates register contents grouped by class: general, index,
// storage, then seeking.
func (c *Computer) Registers() iter.Seq2[byte, []int] {
	return internal.IterSeq2Concat(
		c.registersOf(machine.CLASS_GENERAL),
		c.registersOf(machine.CLASS_INDEX),
		c.registersOf(machine.CLASS_STORAGE),
		c.registersOf(machine.CLASS_SEEKING),
	)
}

func (c *Computer) registersOf(class machine.Class) iter.Seq2[byte, []int] {
	return func(yield func(byte, []int) bool) {
		for spec := range c.Profile.Registers() {
			if spec.Class != class {
				continue
			}
			values, _ := c.Bank.Values(spec.Name)
			if !yield(spec.Name, values) {
				return
			}
		}
	}
}
