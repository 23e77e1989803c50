package vm

// Op identifies an instruction.
type Op int

const (
	OP_SET = Op(0)  // SET
	OP_ADD = Op(1)  // ADD
	OP_SUB = Op(2)  // SUB
	OP_NEG = Op(3)  // NEG
	OP_MUL = Op(4)  // MUL
	OP_DIV = Op(5)  // DIV
	OP_REM = Op(6)  // REM
	OP_ODD = Op(7)  // ODD
	OP_CMP = Op(8)  // CMP
	OP_TCP = Op(9)  // TCP
	OP_FCP = Op(10) // FCP
	OP_LBL = Op(11) // LBL
	OP_JMP = Op(12) // JMP
	OP_LJP = Op(13) // LJP
	OP_UJP = Op(14) // UJP
	OP_SLP = Op(15) // SLP
	OP_TRY = Op(16) // TRY
	OP_TRW = Op(17) // TRW
	OP_CLK = Op(18) // CLK
	OP_END = Op(19) // END

	NUM_OPS  = 20
	NUM_ARGS = 3
)

// ArgReq is what one operand slot of an instruction accepts.
type ArgReq int

const (
	ARG_NONE          = ArgReq(0) // the slot does not exist
	ARG_CONSTANT      = ArgReq(1) // an immediate number
	ARG_REGISTER      = ArgReq(2) // a register, read
	ARG_WRITE         = ArgReq(3) // a register, written
	ARG_VALUE         = ArgReq(4) // a constant or a register
	ARG_COND          = ArgReq(5) // a condition: value, or value-operator-value
	ARG_COND_OR_NONE  = ArgReq(6) // a condition, or nothing
	ARG_CONST_OR_NONE = ArgReq(7) // a constant, or nothing
	ARG_LABEL         = ArgReq(8) // a label name
)

var argReqNames = map[ArgReq]string{
	ARG_NONE:          "nothing",
	ARG_CONSTANT:      "a constant",
	ARG_REGISTER:      "a register",
	ARG_WRITE:         "a writable register",
	ARG_VALUE:         "a constant or register",
	ARG_COND:          "a condition",
	ARG_COND_OR_NONE:  "a condition or nothing",
	ARG_CONST_OR_NONE: "a constant or nothing",
	ARG_LABEL:         "a label",
}

func (req ArgReq) String() string {
	name, ok := argReqNames[req]
	if !ok {
		return "unknown"
	}
	return name
}

// Optional reports whether the slot may be left empty.
func (req ArgReq) Optional() bool {
	return req == ARG_COND_OR_NONE || req == ARG_CONST_OR_NONE
}

type opSpec struct {
	name string
	args [NUM_ARGS]ArgReq
}

var opTable = [NUM_OPS]opSpec{
	OP_SET: {"SET", [NUM_ARGS]ArgReq{ARG_WRITE, ARG_VALUE, ARG_NONE}},
	OP_ADD: {"ADD", [NUM_ARGS]ArgReq{ARG_VALUE, ARG_VALUE, ARG_WRITE}},
	OP_SUB: {"SUB", [NUM_ARGS]ArgReq{ARG_VALUE, ARG_VALUE, ARG_WRITE}},
	OP_NEG: {"NEG", [NUM_ARGS]ArgReq{ARG_REGISTER, ARG_NONE, ARG_NONE}},
	OP_MUL: {"MUL", [NUM_ARGS]ArgReq{ARG_VALUE, ARG_VALUE, ARG_WRITE}},
	OP_DIV: {"DIV", [NUM_ARGS]ArgReq{ARG_VALUE, ARG_VALUE, ARG_WRITE}},
	OP_REM: {"REM", [NUM_ARGS]ArgReq{ARG_VALUE, ARG_VALUE, ARG_WRITE}},
	OP_ODD: {"ODD", [NUM_ARGS]ArgReq{ARG_REGISTER, ARG_NONE, ARG_NONE}},
	OP_CMP: {"CMP", [NUM_ARGS]ArgReq{ARG_COND, ARG_WRITE, ARG_NONE}},
	OP_TCP: {"TCP", [NUM_ARGS]ArgReq{ARG_COND, ARG_WRITE, ARG_NONE}},
	OP_FCP: {"FCP", [NUM_ARGS]ArgReq{ARG_COND, ARG_WRITE, ARG_NONE}},
	OP_LBL: {"LBL", [NUM_ARGS]ArgReq{ARG_LABEL, ARG_NONE, ARG_NONE}},
	OP_JMP: {"JMP", [NUM_ARGS]ArgReq{ARG_COND_OR_NONE, ARG_LABEL, ARG_NONE}},
	OP_LJP: {"LJP", [NUM_ARGS]ArgReq{ARG_COND, ARG_LABEL, ARG_NONE}},
	OP_UJP: {"UJP", [NUM_ARGS]ArgReq{ARG_COND, ARG_LABEL, ARG_NONE}},
	OP_SLP: {"SLP", [NUM_ARGS]ArgReq{ARG_VALUE, ARG_NONE, ARG_NONE}},
	OP_TRY: {"TRY", [NUM_ARGS]ArgReq{ARG_REGISTER, ARG_NONE, ARG_NONE}},
	OP_TRW: {"TRW", [NUM_ARGS]ArgReq{ARG_REGISTER, ARG_NONE, ARG_NONE}},
	OP_CLK: {"CLK", [NUM_ARGS]ArgReq{ARG_WRITE, ARG_CONST_OR_NONE, ARG_NONE}},
	OP_END: {"END", [NUM_ARGS]ArgReq{ARG_NONE, ARG_NONE, ARG_NONE}},
}

var opByName = map[string]Op{}

func init() {
	for op, spec := range opTable {
		opByName[spec.name] = Op(op)
	}
}

// OpByName looks up an opcode by its mnemonic.
func OpByName(name string) (op Op, ok bool) {
	op, ok = opByName[name]
	return
}

// String returns the three-letter mnemonic.
func (op Op) String() string {
	if op < 0 || op >= NUM_OPS {
		return "???"
	}
	return opTable[op].name
}

// Args returns the operand slot requirements.
func (op Op) Args() [NUM_ARGS]ArgReq {
	return opTable[op].args
}

// MinArgs returns the smallest legal operand count.
func (op Op) MinArgs() (n int) {
	for _, req := range opTable[op].args {
		if req != ARG_NONE && !req.Optional() {
			n++
		}
	}
	return
}

// MaxArgs returns the largest legal operand count.
func (op Op) MaxArgs() (n int) {
	for _, req := range opTable[op].args {
		if req != ARG_NONE {
			n++
		}
	}
	return
}
