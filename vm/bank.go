package vm

import (
	"slices"

	"github.com/zrho-lang/zrho/machine"
)

// Bank holds the live register state of one machine. Storage registers are
// addressed through their paired index register unless an explicit index is
// given. A storage register may be blocked until a release tick; accessing
// it earlier advances the shared clock to the release tick and proceeds.
type Bank struct {
	profile *machine.Profile
	clock   *uint64

	cells   map[byte][]int
	release map[byte]uint64
}

// NewBank creates a zeroed bank for the profile. The clock is shared with
// whoever drives the bank; stalled accesses advance it.
func NewBank(prof *machine.Profile, clock *uint64) *Bank {
	b := &Bank{profile: prof, clock: clock}
	b.Reset()
	return b
}

// Reset zeroes every register and clears all blocks.
func (b *Bank) Reset() {
	b.cells = map[byte][]int{}
	b.release = map[byte]uint64{}
	for spec := range b.profile.Registers() {
		b.cells[spec.Name] = make([]int, spec.Capacity)
	}
}

// Read returns the register's current value, addressing storage through its
// index register.
func (b *Bank) Read(name byte) (value int, err error) {
	spec, ok := b.profile.Register(name)
	if !ok {
		err = ErrNoSuchRegister(name)
		return
	}
	index, err := b.effectiveIndex(spec)
	if err != nil {
		return
	}
	return b.ReadAt(name, index)
}

// ReadAt returns the register's value at an explicit index.
func (b *Bank) ReadAt(name byte, index int) (value int, err error) {
	spec, ok := b.profile.Register(name)
	if !ok {
		err = ErrNoSuchRegister(name)
		return
	}
	if index < 0 || index >= spec.Capacity {
		err = ErrOutOfBounds{Register: name, Index: index}
		return
	}
	b.wait(name)
	value = b.cells[name][index]
	return
}

// Write stores a value into the register, addressing storage through its
// index register. Writing an index register far enough from its previous
// value blocks the storage array it addresses.
func (b *Bank) Write(name byte, value int) (err error) {
	spec, ok := b.profile.Register(name)
	if !ok {
		err = ErrNoSuchRegister(name)
		return
	}
	index, err := b.effectiveIndex(spec)
	if err != nil {
		return
	}
	return b.WriteAt(name, index, value)
}

// WriteAt stores a value into the register at an explicit index.
func (b *Bank) WriteAt(name byte, index int, value int) (err error) {
	spec, ok := b.profile.Register(name)
	if !ok {
		err = ErrNoSuchRegister(name)
		return
	}
	if index < 0 || index >= spec.Capacity {
		err = ErrOutOfBounds{Register: name, Index: index}
		return
	}
	if value < spec.Min || value > spec.Max {
		err = ErrOutOfRange{Register: name, Value: int64(value)}
		return
	}
	b.wait(name)

	previous := b.cells[name][index]
	b.cells[name][index] = value

	if spec.Class == machine.CLASS_INDEX {
		b.block(spec.Name, previous, value)
	}
	return
}

// Resolve returns the value of a constant or register operand.
func (b *Bank) Resolve(v Value) (value int, err error) {
	if !v.IsRegister() {
		value = v.Constant
		return
	}
	return b.Read(v.Register)
}

// Values returns a copy of the register's cells.
func (b *Bank) Values(name byte) (values []int, ok bool) {
	cells, ok := b.cells[name]
	if !ok {
		return
	}
	values = slices.Clone(cells)
	return
}

// BlockedFor returns how many ticks remain until the register unblocks.
func (b *Bank) BlockedFor(name byte) uint64 {
	if rel := b.release[name]; rel > *b.clock {
		return rel - *b.clock
	}
	return 0
}

// effectiveIndex resolves where in the register an unadorned access lands:
// cell zero for scalars, the paired index register's value for storage.
func (b *Bank) effectiveIndex(spec *machine.RegisterSpec) (index int, err error) {
	if spec.Class != machine.CLASS_STORAGE {
		return
	}
	cells, ok := b.cells[spec.Index]
	if !ok {
		err = ErrNoSuchRegister(spec.Index)
		return
	}
	index = cells[0]
	return
}

// wait stalls a blocked access by advancing the clock to the release tick.
func (b *Bank) wait(name byte) {
	if rel := b.release[name]; rel > *b.clock {
		*b.clock = rel
	}
}

// block stamps a release tick on the storage array addressed by an index
// register whose value just moved by BlockChange or more.
func (b *Bank) block(index byte, previous, value int) {
	storage := b.profile.StorageFor(index)
	if storage == nil || storage.BlockChange == 0 {
		return
	}
	change := value - previous
	if change < 0 {
		change = -change
	}
	if change >= storage.BlockChange {
		b.release[storage.Name] = *b.clock + storage.BlockTicks
	}
}
