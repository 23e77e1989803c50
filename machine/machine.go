package machine

import (
	"iter"
	"slices"
)

// Class is a register class.
type Class int

const (
	CLASS_GENERAL = Class(0) // general
	CLASS_INDEX   = Class(1) // index
	CLASS_STORAGE = Class(2) // storage
	CLASS_SEEKING = Class(3) // seeking
)

var classNames = map[Class]string{
	CLASS_GENERAL: "general",
	CLASS_INDEX:   "index",
	CLASS_STORAGE: "storage",
	CLASS_SEEKING: "seeking",
}

// String returns the lower-case class name.
func (c Class) String() string {
	name, ok := classNames[c]
	if !ok {
		return "unknown"
	}
	return name
}

// RegisterSpec describes one register of a machine.
type RegisterSpec struct {
	Name     byte  // Single-letter register identifier ('A'..'Z').
	Class    Class // Register class.
	Capacity int   // Array length; 1 for scalar classes.
	Min      int   // Smallest storable value (inclusive).
	Max      int   // Largest storable value (inclusive).

	ReadCost  uint64 // Ticks added when the register is read.
	WriteCost uint64 // Ticks added when the register is written.

	Index byte // Storage class only: the index register addressing this array.

	// BlockChange is the smallest index-register change magnitude that
	// blocks this array; 0 means the array never blocks.
	BlockChange int
	// BlockTicks is how long a block lasts, counted from the qualifying
	// index write.
	BlockTicks uint64
}

// Scalar reports whether the register holds a single cell.
func (spec *RegisterSpec) Scalar() bool {
	return spec.Capacity <= 1
}

// OpCost is the tick cost of one instruction kind. NotTaken applies to the
// jump instructions when their condition fails; Paired applies to DIV and
// REM when the previous instruction was the complementary operation on the
// same operands.
type OpCost struct {
	Base     uint64
	NotTaken uint64
	Paired   uint64
}

// Profile is the static description of one machine variant. It is immutable
// once constructed and may be shared by any number of programs.
type Profile struct {
	Name   string
	Digits int // Values span [-(10^Digits - 1), 10^Digits - 1].

	registers map[byte]*RegisterSpec
	costs     map[string]OpCost
}

// New creates an empty profile with the given name and digit width.
func New(name string, digits int) *Profile {
	return &Profile{
		Name:      name,
		Digits:    digits,
		registers: map[byte]*RegisterSpec{},
		costs:     map[string]OpCost{},
	}
}

// WithRegister adds a register to the profile. Zero Min/Max select the
// profile's digit-width bounds; zero Capacity selects a scalar cell.
func (p *Profile) WithRegister(spec RegisterSpec) *Profile {
	if spec.Capacity == 0 {
		spec.Capacity = 1
	}
	if spec.Min == 0 && spec.Max == 0 {
		spec.Max = p.MaxValue()
		spec.Min = -spec.Max
	}
	p.registers[spec.Name] = &spec
	return p
}

// WithOp marks an instruction as supported at the given cost.
func (p *Profile) WithOp(name string, cost OpCost) *Profile {
	p.costs[name] = cost
	return p
}

// WithOps marks every instruction in costs as supported.
func (p *Profile) WithOps(costs map[string]OpCost) *Profile {
	for name, cost := range costs {
		p.costs[name] = cost
	}
	return p
}

// MaxValue returns the largest value any default-bounded register can hold.
func (p *Profile) MaxValue() int {
	max := 0
	for i := 0; i < p.Digits; i++ {
		max = max*10 + 9
	}
	return max
}

// Register looks up a register spec by name.
func (p *Profile) Register(name byte) (spec *RegisterSpec, ok bool) {
	spec, ok = p.registers[name]
	return
}

// StorageFor returns the storage register addressed by the given index
// register, or nil if the index register addresses nothing.
func (p *Profile) StorageFor(index byte) *RegisterSpec {
	for _, spec := range p.registers {
		if spec.Class == CLASS_STORAGE && spec.Index == index {
			return spec
		}
	}
	return nil
}

// Registers iterates the register specs in name order.
func (p *Profile) Registers() iter.Seq[*RegisterSpec] {
	names := make([]byte, 0, len(p.registers))
	for name := range p.registers {
		names = append(names, name)
	}
	slices.Sort(names)

	return func(yield func(*RegisterSpec) bool) {
		for _, name := range names {
			if !yield(p.registers[name]) {
				return
			}
		}
	}
}

// Supports reports whether the machine implements the named instruction.
func (p *Profile) Supports(op string) bool {
	_, ok := p.costs[op]
	return ok
}

// CostOf returns the cost table entry for the named instruction.
func (p *Profile) CostOf(op string) (cost OpCost, ok bool) {
	cost, ok = p.costs[op]
	return
}
