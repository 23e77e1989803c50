package machine

import (
	"maps"
	"slices"
)

// Default per-instruction costs, shared by the builtin machines.
var defaultCosts = map[string]OpCost{
	"SET": {Base: 1},
	"ADD": {Base: 1},
	"SUB": {Base: 1},
	"NEG": {Base: 0},
	"MUL": {Base: 2},
	"DIV": {Base: 4, Paired: 1},
	"REM": {Base: 4, Paired: 1},
	"ODD": {Base: 1},
	"CMP": {Base: 1},
	"TCP": {Base: 2},
	"FCP": {Base: 2},
	"LBL": {Base: 0},
	"JMP": {Base: 1, NotTaken: 0},
	"LJP": {Base: 0, NotTaken: 5},
	"UJP": {Base: 5, NotTaken: 0},
	"SLP": {Base: 0},
	"TRY": {Base: 0},
	"TRW": {Base: 0},
	"CLK": {Base: 0},
	"END": {Base: 0},
}

// DefaultCosts returns a copy of the default instruction cost table.
func DefaultCosts() map[string]OpCost {
	return maps.Clone(defaultCosts)
}

// BLOCK_TICKS is how long a massive storage register stays blocked after a
// far index jump.
const BLOCK_TICKS = 16

// Builtin machine profiles.
var (
	ZR1 = register(newZR1())
	ZR2 = register(newZR2())
	ZR3 = register(newZR3())
)

var profiles = map[string]*Profile{}

func register(p *Profile) *Profile {
	profiles[p.Name] = p
	return p
}

// ByName looks up a builtin profile.
func ByName(name string) (p *Profile, ok bool) {
	p, ok = profiles[name]
	return
}

// Names returns the builtin profile names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(profiles))
}

// newZR1 is the entry machine: two general registers, one indexed storage
// array, no multiplier and no clock.
func newZR1() *Profile {
	costs := DefaultCosts()
	delete(costs, "MUL")
	delete(costs, "DIV")
	delete(costs, "REM")
	delete(costs, "CLK")

	return New("zr1", 4).
		WithOps(costs).
		WithRegister(RegisterSpec{Name: 'X', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'Y', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'I', Class: CLASS_INDEX}).
		WithRegister(RegisterSpec{Name: 'D', Class: CLASS_STORAGE,
			Capacity: 100, Index: 'I', ReadCost: 1, WriteCost: 1})
}

// newZR2 adds the multiplier/divider, the clock, and a second storage array.
func newZR2() *Profile {
	return New("zr2", 4).
		WithOps(DefaultCosts()).
		WithRegister(RegisterSpec{Name: 'X', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'Y', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'Z', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'W', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'I', Class: CLASS_INDEX}).
		WithRegister(RegisterSpec{Name: 'J', Class: CLASS_INDEX}).
		WithRegister(RegisterSpec{Name: 'D', Class: CLASS_STORAGE,
			Capacity: 100, Index: 'I', ReadCost: 1, WriteCost: 1}).
		WithRegister(RegisterSpec{Name: 'E', Class: CLASS_STORAGE,
			Capacity: 100, Index: 'J', ReadCost: 1, WriteCost: 1})
}

// newZR3 adds the massive H array. H stalls for BLOCK_TICKS ticks whenever
// its index register M moves by more than one step in a single write.
func newZR3() *Profile {
	return New("zr3", 4).
		WithOps(DefaultCosts()).
		WithRegister(RegisterSpec{Name: 'X', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'Y', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'Z', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'W', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'U', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'V', Class: CLASS_GENERAL}).
		WithRegister(RegisterSpec{Name: 'I', Class: CLASS_INDEX}).
		WithRegister(RegisterSpec{Name: 'J', Class: CLASS_INDEX}).
		WithRegister(RegisterSpec{Name: 'K', Class: CLASS_INDEX}).
		WithRegister(RegisterSpec{Name: 'L', Class: CLASS_INDEX}).
		WithRegister(RegisterSpec{Name: 'M', Class: CLASS_INDEX}).
		WithRegister(RegisterSpec{Name: 'D', Class: CLASS_STORAGE,
			Capacity: 100, Index: 'I', ReadCost: 1, WriteCost: 1}).
		WithRegister(RegisterSpec{Name: 'E', Class: CLASS_STORAGE,
			Capacity: 100, Index: 'J', ReadCost: 1, WriteCost: 1}).
		WithRegister(RegisterSpec{Name: 'F', Class: CLASS_STORAGE,
			Capacity: 100, Index: 'K', ReadCost: 1, WriteCost: 1}).
		WithRegister(RegisterSpec{Name: 'G', Class: CLASS_STORAGE,
			Capacity: 100, Index: 'L', ReadCost: 1, WriteCost: 1}).
		WithRegister(RegisterSpec{Name: 'H', Class: CLASS_STORAGE,
			Capacity: 4096, Index: 'M', ReadCost: 2, WriteCost: 2,
			BlockChange: 2, BlockTicks: BLOCK_TICKS})
}
