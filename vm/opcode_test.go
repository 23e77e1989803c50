package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpTable(t *testing.T) {
	assert := assert.New(t)

	for n := 0; n < NUM_OPS; n++ {
		op := Op(n)
		name := op.String()
		assert.Equal(3, len(name), name)

		back, ok := OpByName(name)
		assert.True(ok, name)
		assert.Equal(op, back)

		assert.LessOrEqual(op.MinArgs(), op.MaxArgs(), name)
	}

	_, ok := OpByName("XXX")
	assert.False(ok)
	assert.Equal("???", Op(-1).String())
}

func TestOpArity(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op       Op
		min, max int
	}){
		{OP_SET, 2, 2},
		{OP_ADD, 3, 3},
		{OP_NEG, 1, 1},
		{OP_CMP, 2, 2},
		{OP_JMP, 1, 2},
		{OP_CLK, 1, 2},
		{OP_END, 0, 0},
	}

	for _, entry := range table {
		assert.Equal(entry.min, entry.op.MinArgs(), entry.op)
		assert.Equal(entry.max, entry.op.MaxArgs(), entry.op)
	}
}

func TestInstructionString(t *testing.T) {
	assert := assert.New(t)

	instr := Instruction{
		Op: OP_JMP,
		Args: [NUM_ARGS]Operand{
			{Kind: OPERAND_COND, Cond: Condition{
				Lhs: Value{Register: 'I'},
				Op:  COND_LT,
				Rhs: Value{Constant: 10},
			}},
			{Kind: OPERAND_LABEL, Label: "loop"},
		},
	}
	assert.Equal("JMP I < 10 loop", instr.String())

	bare := Instruction{
		Op: OP_SET,
		Args: [NUM_ARGS]Operand{
			{Kind: OPERAND_VALUE, Value: Value{Register: 'X'}},
			{Kind: OPERAND_VALUE, Value: Value{Constant: -5}},
		},
	}
	assert.Equal("SET X -5", bare.String())

	assert.Equal("END", Instruction{Op: OP_END}.String())
}

func TestCondOpHolds(t *testing.T) {
	assert := assert.New(t)

	assert.True(COND_GT.Holds(2, 1))
	assert.False(COND_GT.Holds(1, 1))
	assert.True(COND_GE.Holds(1, 1))
	assert.True(COND_LT.Holds(-2, -1))
	assert.True(COND_LE.Holds(-1, -1))
	assert.True(COND_EQ.Holds(0, 0))
	assert.True(COND_NE.Holds(0, 1))
	assert.False(COND_NONE.Holds(1, 1))
}
