package vm

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zrho-lang/zrho/machine"
)

func runProgram(t *testing.T, prof *machine.Profile, source string, budget int) *Computer {
	t.Helper()
	assert := assert.New(t)

	prog := mustParse(t, prof, source)
	computer := NewComputer(prog, prof)
	outcome, err := computer.Run(budget)
	assert.NoError(err)
	assert.Equal(RUN_HALTED, outcome)
	return computer
}

func scalar(t *testing.T, c *Computer, name byte) int {
	t.Helper()

	values, ok := c.Bank.Values(name)
	if !ok || len(values) != 1 {
		t.Fatalf("no scalar register '%c'", name)
	}
	return values[0]
}

func TestComputerArithmetic(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"SET X 40",
		"ADD X 2 Y",
		"SUB Y 50 Z",
		"NEG Z",
		"MUL Z Z W",
		"END",
	}

	c := runProgram(t, machine.ZR2, strings.Join(program, "\n"), 100)
	assert.Equal(42, scalar(t, c, 'Y'))
	assert.Equal(8, scalar(t, c, 'Z'))
	assert.Equal(64, scalar(t, c, 'W'))
}

func TestComputerEuclid(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		a, b, q, r int
	}){
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{7, -2, -3, 1},
		{-7, -2, 4, 1},
		{9, 3, 3, 0},
		{-9, 3, -3, 0},
	}

	for _, entry := range table {
		source := fmt.Sprintf("DIV %d %d X\nREM %d %d Y\nEND\n",
			entry.a, entry.b, entry.a, entry.b)
		c := runProgram(t, machine.ZR2, source, 10)

		q := scalar(t, c, 'X')
		r := scalar(t, c, 'Y')
		assert.Equal(entry.q, q, source)
		assert.Equal(entry.r, r, source)

		// The defining property: a = b*q + r with 0 <= r < |b|.
		assert.Equal(entry.a, entry.b*q+r, source)
		assert.GreaterOrEqual(r, 0, source)
		abs := entry.b
		if abs < 0 {
			abs = -abs
		}
		assert.Less(r, abs, source)
	}
}

func TestComputerOdd(t *testing.T) {
	assert := assert.New(t)

	c := runProgram(t, machine.ZR2, "SET X -7\nODD X\nSET Y 4\nODD Y\nEND\n", 10)
	assert.Equal(1, scalar(t, c, 'X'))
	assert.Equal(0, scalar(t, c, 'Y'))
}

func TestComputerCompare(t *testing.T) {
	assert := assert.New(t)

	// CMP always writes; TCP writes only on true, FCP only on false.
	program := []string{
		"CMP X = 0 Y",
		"SET Z 7",
		"TCP X > 100 Z",
		"SET W 7",
		"FCP X = 0 W",
		"SET U 7",
		"FCP X = 1 U",
		"END",
	}

	c := runProgram(t, machine.ZR3, strings.Join(program, "\n"), 20)
	assert.Equal(1, scalar(t, c, 'Y'))
	assert.Equal(7, scalar(t, c, 'Z'))
	assert.Equal(7, scalar(t, c, 'W'))
	assert.Equal(0, scalar(t, c, 'U'))
}

func TestComputerBareCondition(t *testing.T) {
	assert := assert.New(t)

	c := runProgram(t, machine.ZR2, "SET X 5\nCMP X Y\nCMP Z W\nEND\n", 10)
	assert.Equal(1, scalar(t, c, 'Y'))
	assert.Equal(0, scalar(t, c, 'W'))
}

func TestComputerCountingLoop(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"LBL loop",
		"SET D I",
		"ADD I 1 I",
		"JMP I < 10 loop",
		"END",
	}

	c := runProgram(t, machine.ZR1, strings.Join(program, "\n"), 50)

	snap := c.Snapshot()
	assert.True(snap.Halted)
	assert.Equal(10, scalar(t, c, 'I'))
	for n := 0; n < 10; n++ {
		assert.Equal(n, snap.Values['D'][n])
	}

	// 10 iterations of SET (1+1) and ADD (1), 9 taken jumps at 1, the
	// final untaken jump and END at 0.
	assert.Equal(uint64(39), snap.Ticks)
}

func TestComputerTiming(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		prof   *machine.Profile
		source string
		ticks  uint64
	}){
		{machine.ZR2, "MUL 3 4 X\nEND\n", 2},
		{machine.ZR2, "DIV 7 2 X\nEND\n", 4},
		{machine.ZR2, "DIV 7 2 X\nREM 7 2 Y\nEND\n", 5},
		{machine.ZR2, "REM 7 2 Y\nDIV 7 2 X\nEND\n", 5},
		{machine.ZR2, "DIV 7 2 X\nREM 8 2 Y\nEND\n", 8},
		{machine.ZR1, "SET D 5\nEND\n", 2},
		{machine.ZR1, "SET X D\nEND\n", 2},
		{machine.ZR1, "ADD D D X\nEND\n", 2},
		{machine.ZR1, "TRY D\nEND\n", 1},
		{machine.ZR1, "TRW D\nEND\n", 1},
		{machine.ZR1, "TRY X\nEND\n", 0},
		{machine.ZR2, "JMP end\nSET X 1\nLBL end\nEND\n", 1},
		{machine.ZR2, "JMP X > 0 end\nSET Y 1\nLBL end\nEND\n", 1},
		{machine.ZR2, "LJP 1 end\nSET X 1\nLBL end\nEND\n", 0},
		{machine.ZR2, "LJP X > 0 end\nSET Y 1\nLBL end\nEND\n", 6},
		{machine.ZR2, "UJP 1 end\nSET X 1\nLBL end\nEND\n", 5},
		{machine.ZR2, "UJP X > 0 end\nSET Y 1\nLBL end\nEND\n", 1},
		{machine.ZR2, "SLP 5\nEND\n", 5},
		{machine.ZR2, "SET X 3\nSLP X\nEND\n", 4},
		{machine.ZR2, "SET X 5\nNEG X\nEND\n", 1},
	}

	for _, entry := range table {
		c := runProgram(t, entry.prof, entry.source, 100)
		assert.Equal(entry.ticks, c.Ticks, entry.source)
	}
}

func TestComputerClock(t *testing.T) {
	assert := assert.New(t)

	c := runProgram(t, machine.ZR2, "SLP 123\nCLK X\nCLK Y 1\nCLK Z 2\nEND\n", 10)
	assert.Equal(123, scalar(t, c, 'X'))
	assert.Equal(12, scalar(t, c, 'Y'))
	assert.Equal(1, scalar(t, c, 'Z'))
	assert.Equal(uint64(123), c.Ticks)
}

func TestComputerBlocking(t *testing.T) {
	assert := assert.New(t)

	// The far M move blocks H for 16 ticks from the write; SET H stalls
	// until tick 16, then pays its own base and write costs.
	c := runProgram(t, machine.ZR3, "SET M 5\nSET H 1\nEND\n", 10)
	assert.Equal(uint64(19), c.Ticks)
	snap := c.Snapshot()
	assert.Equal(1, snap.Values['H'][5])

	// A one-step move does not block.
	c = runProgram(t, machine.ZR3, "SET M 1\nSET H 1\nEND\n", 10)
	assert.Equal(uint64(4), c.Ticks)
}

func TestComputerFaults(t *testing.T) {
	assert := assert.New(t)

	prog := mustParse(t, machine.ZR1, "SET I 100\nSET D 1\nEND\n")
	c := NewComputer(prog, machine.ZR1)
	_, err := c.Run(10)

	var rte *ErrRuntime
	if assert.True(errors.As(err, &rte)) {
		assert.Equal(2, rte.LineNo)
	}
	var oob ErrOutOfBounds
	assert.True(errors.As(err, &oob))
	assert.True(c.Halted)

	// The faulting instruction left no trace: ticks and registers are as
	// they were before it.
	assert.Equal(uint64(1), c.Ticks)
	assert.Equal(100, scalar(t, c, 'I'))
}

func TestComputerOverflow(t *testing.T) {
	assert := assert.New(t)

	prog := mustParse(t, machine.ZR1, "SET X 9999\nADD X 1 X\nEND\n")
	c := NewComputer(prog, machine.ZR1)
	_, err := c.Run(10)

	var oor ErrOutOfRange
	if assert.True(errors.As(err, &oor)) {
		assert.Equal(byte('X'), oor.Register)
		assert.Equal(int64(10000), oor.Value)
	}
	assert.Equal(9999, scalar(t, c, 'X'))
}

func TestComputerDivisionByZero(t *testing.T) {
	assert := assert.New(t)

	prog := mustParse(t, machine.ZR2, "SET Y 0\nDIV 1 Y X\nEND\n")
	c := NewComputer(prog, machine.ZR2)
	_, err := c.Run(10)
	assert.ErrorIs(err, ErrDivisionByZero)
}

func TestComputerBudget(t *testing.T) {
	assert := assert.New(t)

	prog := mustParse(t, machine.ZR2, "LBL top\nJMP top\n")
	c := NewComputer(prog, machine.ZR2)
	outcome, err := c.Run(100)
	assert.NoError(err)
	assert.Equal(RUN_BUDGET_EXCEEDED, outcome)
	assert.False(c.Halted)
}

func TestComputerRunsOffEnd(t *testing.T) {
	assert := assert.New(t)

	c := runProgram(t, machine.ZR2, "SET X 1\n", 10)
	assert.True(c.Halted)
	assert.Equal(1, scalar(t, c, 'X'))
}

func TestComputerReset(t *testing.T) {
	assert := assert.New(t)

	c := runProgram(t, machine.ZR2, "SET X 5\nSLP 5\nEND\n", 10)
	assert.Equal(5, scalar(t, c, 'X'))
	assert.Equal(uint64(6), c.Ticks)

	c.Reset()
	assert.Equal(0, scalar(t, c, 'X'))
	assert.Equal(uint64(0), c.Ticks)
	assert.Equal(0, c.PC)
	assert.False(c.Halted)

	outcome, err := c.Run(10)
	assert.NoError(err)
	assert.Equal(RUN_HALTED, outcome)
	assert.Equal(5, scalar(t, c, 'X'))
}

func TestComputerKolakoski(t *testing.T) {
	assert := assert.New(t)

	// Generate the Kolakoski sequence into H: the sequence of 1s and 2s
	// that is its own run-length encoding. X is the write position, Y the
	// run pointer, Z the last value written, W the current run length.
	program := []string{
		"SET M 0",
		"SET H 1",
		"SET M 1",
		"SET H 2",
		"SET M 2",
		"SET H 2",
		"SET X 3",
		"SET Y 2",
		"SET Z 2",
		"LBL loop",
		"JMP X >= 14 done",
		"SET M Y",
		"SET W H",
		"SUB 3 Z Z",
		"SET M X",
		"SET H Z",
		"ADD X 1 X",
		"JMP W < 2 next",
		"JMP X >= 14 next",
		"SET M X",
		"SET H Z",
		"ADD X 1 X",
		"LBL next",
		"ADD Y 1 Y",
		"JMP loop",
		"LBL done",
		"END",
	}

	c := runProgram(t, machine.ZR3, strings.Join(program, "\n"), 10000)

	expected := []int{1, 2, 2, 1, 1, 2, 1, 2, 2, 1, 2, 2, 1, 1}
	snap := c.Snapshot()
	assert.Equal(expected, snap.Values['H'][:len(expected)])
}
