package machine

import (
	"errors"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/zrho-lang/zrho/translate"
)

var f = translate.From

var (
	ErrProfileName   = errors.New(f("profile name missing"))
	ErrProfileDigits = errors.New(f("profile digits out of range"))
)

type ErrProfileClass string

func (err ErrProfileClass) Error() string {
	return f("'%v' is not a register class", string(err))
}

type ErrProfileRegister string

func (err ErrProfileRegister) Error() string {
	return f("'%v' is not a single-letter register name", string(err))
}

type ErrProfileOp string

func (err ErrProfileOp) Error() string {
	return f("'%v' is not an instruction", string(err))
}

// profileFile is the TOML schema for a custom machine profile.
type profileFile struct {
	Name     string
	Digits   int
	Register []registerFile
	Op       map[string]costFile
}

type registerFile struct {
	Name        string
	Class       string
	Capacity    int
	Min         int
	Max         int
	ReadCost    uint64 `toml:"read_cost"`
	WriteCost   uint64 `toml:"write_cost"`
	Index       string
	BlockChange int    `toml:"block_change"`
	BlockTicks  uint64 `toml:"block_ticks"`
}

type costFile struct {
	Base     uint64
	NotTaken uint64 `toml:"not_taken"`
	Paired   uint64
}

var classByName = map[string]Class{
	"general": CLASS_GENERAL,
	"index":   CLASS_INDEX,
	"storage": CLASS_STORAGE,
	"seeking": CLASS_SEEKING,
}

// LoadProfile reads a machine profile from TOML. Instructions omitted from
// the [op] table are unsupported on the loaded machine; an absent [op] table
// selects the full default set.
func LoadProfile(input io.Reader) (p *Profile, err error) {
	var file profileFile
	_, err = toml.NewDecoder(input).Decode(&file)
	if err != nil {
		return
	}

	if len(file.Name) == 0 {
		err = ErrProfileName
		return
	}
	if file.Digits < 1 || file.Digits > 9 {
		err = ErrProfileDigits
		return
	}

	p = New(file.Name, file.Digits)

	if len(file.Op) == 0 {
		p.WithOps(DefaultCosts())
	} else {
		for name, cost := range file.Op {
			if _, ok := defaultCosts[name]; !ok {
				p = nil
				err = ErrProfileOp(name)
				return
			}
			p.WithOp(name, OpCost(cost))
		}
	}

	for _, reg := range file.Register {
		if len(reg.Name) != 1 || reg.Name[0] < 'A' || reg.Name[0] > 'Z' {
			p = nil
			err = ErrProfileRegister(reg.Name)
			return
		}
		class, ok := classByName[reg.Class]
		if !ok {
			p = nil
			err = ErrProfileClass(reg.Class)
			return
		}
		var index byte
		if len(reg.Index) == 1 {
			index = reg.Index[0]
		} else if len(reg.Index) > 1 {
			p = nil
			err = ErrProfileRegister(reg.Index)
			return
		}
		p.WithRegister(RegisterSpec{
			Name:        reg.Name[0],
			Class:       class,
			Capacity:    reg.Capacity,
			Min:         reg.Min,
			Max:         reg.Max,
			ReadCost:    reg.ReadCost,
			WriteCost:   reg.WriteCost,
			Index:       index,
			BlockChange: reg.BlockChange,
			BlockTicks:  reg.BlockTicks,
		})
	}

	return
}
