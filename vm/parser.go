package vm

import (
	"bufio"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/zrho-lang/zrho/machine"
)

// Parser parses assembly text into a Program for one machine profile.
//
// Parsing does not stop at the first problem: every faulty line is reported,
// each with its line number and source text. A ';' starts a comment anywhere
// on the line, whitespace before it or not; no operand may contain one.
type Parser struct {
	Verbose bool             // If set, verbosely logs each source line.
	Profile *machine.Profile // The machine the program must run on.
}

var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)
var labelRe = regexp.MustCompile(`^[-_a-zA-Z0-9]+$`)

// token is one raw operand: a single word, or a word-operator-word
// comparison.
type token struct {
	word string
	cmp  bool
	op   CondOp
	rhs  string
}

func (t token) String() string {
	if t.cmp {
		return t.word + " " + t.op.String() + " " + t.rhs
	}
	return t.word
}

// rawLine is one statement awaiting label resolution.
type rawLine struct {
	lineNo int
	text   string
	op     Op
	args   []token
}

// Parse reads a whole program. On failure prog is nil and errs holds every
// load error found, in source order.
func (p *Parser) Parse(input io.Reader) (prog *Program, errs []*ErrLoad) {
	fail := func(lineNo int, line string, err error) {
		errs = append(errs, &ErrLoad{LineNo: lineNo, Line: line, Err: err})
	}

	var raws []rawLine
	labels := map[string]int{}
	labelLine := map[string]int{}

	scanner := bufio.NewScanner(input)
	var lineNo int
	for scanner.Scan() {
		text := scanner.Text()
		lineNo += 1

		if p.Verbose {
			log.Printf("%v: %v\n", lineNo, text)
		}

		line := strings.TrimSpace(strings.Split(text, ";")[0])
		if len(line) == 0 {
			continue
		}

		line, err := p.expand(line)
		if err != nil {
			fail(lineNo, line, err)
			continue
		}

		words := strings.Fields(line)
		op, ok := OpByName(words[0])
		if !ok {
			fail(lineNo, line, ErrUnknownInstruction(words[0]))
			continue
		}

		// Labels bind to the index of whatever instruction follows.
		if op == OP_LBL {
			if len(words) != 2 {
				fail(lineNo, line, ErrArity{Got: len(words) - 1, Min: 1, Max: 1})
				continue
			}
			label := words[1]
			if !labelRe.MatchString(label) {
				fail(lineNo, line, ErrBadLabel(label))
				continue
			}
			if _, dup := labels[label]; dup {
				fail(lineNo, line, ErrDuplicateLabel(label))
				continue
			}
			labels[label] = len(raws)
			labelLine[label] = lineNo
			continue
		}

		if !p.Profile.Supports(op.String()) {
			fail(lineNo, line, ErrUnsupportedOp(op.String()))
			continue
		}

		args, err := splitArgs(words[1:])
		if err != nil {
			fail(lineNo, line, err)
			continue
		}

		raws = append(raws, rawLine{lineNo: lineNo, text: line, op: op, args: args})
	}
	if err := scanner.Err(); err != nil {
		fail(lineNo, "", err)
	}

	for label, index := range labels {
		if index == len(raws) {
			fail(labelLine[label], "LBL "+label, ErrDanglingLabel)
		}
	}

	prog = &Program{
		Instructions: make([]Instruction, 0, len(raws)),
		Labels:       labels,
	}
	for _, raw := range raws {
		instr, bindErrs := p.bind(raw, labels)
		for _, err := range bindErrs {
			fail(raw.lineNo, raw.text, err)
		}
		prog.Instructions = append(prog.Instructions, instr)
	}

	if len(errs) > 0 {
		prog = nil
	}
	return
}

// expand does compile-time $(...) evaluations.
func (p *Parser) expand(line string) (expanded string, err error) {
	expanded = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := p.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.Itoa(value)
	})
	return
}

// parenEval evaluates one $() expression with the machine's limits
// predefined: MAX, MIN, and CAP_<register> for every register.
func (p *Parser) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{
		"MAX": starlark.MakeInt(p.Profile.MaxValue()),
		"MIN": starlark.MakeInt(-p.Profile.MaxValue()),
	}
	for spec := range p.Profile.Registers() {
		pred["CAP_"+string(spec.Name)] = starlark.MakeInt(spec.Capacity)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrExpression(expr)
		return
	}
	rc, ok := dict["rc"]
	if !ok {
		err = ErrExpression(expr)
		return
	}
	rcInt, ok := rc.(starlark.Int)
	if !ok {
		err = ErrExpression(expr)
		return
	}
	rc64, ok := rcInt.Int64()
	if !ok {
		err = ErrExpression(expr)
		return
	}
	value = int(rc64)
	return
}

// splitArgs groups the operand words, folding word-operator-word runs into
// single comparison tokens.
func splitArgs(words []string) (args []token, err error) {
	for i := 0; i < len(words); i++ {
		if _, lonely := CondOpByName(words[i]); lonely {
			err = ErrIncompleteCondition
			return
		}
		t := token{word: words[i]}
		if i+1 < len(words) {
			if op, ok := CondOpByName(words[i+1]); ok {
				if i+2 >= len(words) {
					err = ErrIncompleteCondition
					return
				}
				t.cmp = true
				t.op = op
				t.rhs = words[i+2]
				i += 2
			}
		}
		args = append(args, t)
	}
	return
}

// bind fits the raw operands to the instruction's slots, skipping optional
// slots when fewer operands were given than slots exist.
func (p *Parser) bind(raw rawLine, labels map[string]int) (instr Instruction, errs []error) {
	instr = Instruction{Op: raw.op, Line: raw.lineNo}

	min, max := raw.op.MinArgs(), raw.op.MaxArgs()
	if len(raw.args) < min || len(raw.args) > max {
		errs = append(errs, ErrArity{Got: len(raw.args), Min: min, Max: max})
		return
	}

	next := 0
	skipped := 0
	for slot, req := range raw.op.Args() {
		if req == ARG_NONE || next >= len(raw.args) {
			break
		}
		if req.Optional() && max > skipped+len(raw.args) {
			skipped += 1
			continue
		}
		arg, err := p.bindArg(raw.args[next], req, labels)
		next += 1
		if err != nil {
			errs = append(errs, err)
			continue
		}
		instr.Args[slot] = arg
	}
	return
}

// bindArg turns one token into an operand of the required shape.
func (p *Parser) bindArg(t token, req ArgReq, labels map[string]int) (arg Operand, err error) {
	if t.cmp {
		if req != ARG_COND && req != ARG_COND_OR_NONE {
			err = ErrOperandType{Got: t.String(), Expected: req}
			return
		}
		var lhs, rhs Value
		lhs, err = p.value(t.word, req)
		if err != nil {
			return
		}
		rhs, err = p.value(t.rhs, req)
		if err != nil {
			return
		}
		arg = Operand{Kind: OPERAND_COND, Cond: Condition{Lhs: lhs, Op: t.op, Rhs: rhs}}
		return
	}

	switch req {
	case ARG_LABEL:
		index, ok := labels[t.word]
		if !ok {
			err = ErrUndefinedLabel(t.word)
			return
		}
		arg = Operand{Kind: OPERAND_LABEL, Label: t.word, Target: index}

	case ARG_CONSTANT, ARG_CONST_OR_NONE:
		var v Value
		v, err = p.value(t.word, req)
		if err != nil {
			return
		}
		if v.IsRegister() {
			err = ErrOperandType{Got: t.word, Expected: req}
			return
		}
		// Constant-only slots (the CLK digit shift) take counts, not
		// signed values.
		if v.Constant < 0 {
			err = ErrConstantRange{Token: t.word, Min: 0, Max: p.Profile.MaxValue()}
			return
		}
		arg = Operand{Kind: OPERAND_VALUE, Value: v}

	case ARG_REGISTER, ARG_WRITE:
		var v Value
		v, err = p.value(t.word, req)
		if err != nil {
			return
		}
		if !v.IsRegister() {
			err = ErrOperandType{Got: t.word, Expected: req}
			return
		}
		arg = Operand{Kind: OPERAND_VALUE, Value: v}

	case ARG_VALUE:
		var v Value
		v, err = p.value(t.word, req)
		if err != nil {
			return
		}
		arg = Operand{Kind: OPERAND_VALUE, Value: v}

	case ARG_COND, ARG_COND_OR_NONE:
		var v Value
		v, err = p.value(t.word, req)
		if err != nil {
			return
		}
		arg = Operand{Kind: OPERAND_COND, Cond: Condition{Lhs: v}}
	}
	return
}

// value resolves a word as a constant first, then as a register.
func (p *Parser) value(word string, req ArgReq) (v Value, err error) {
	if n, convErr := strconv.Atoi(word); convErr == nil {
		max := p.Profile.MaxValue()
		if n < -max || n > max {
			err = ErrConstantRange{Token: word, Min: -max, Max: max}
			return
		}
		v = Value{Constant: n}
		return
	}

	if len(word) == 1 && word[0] >= 'A' && word[0] <= 'Z' {
		if _, ok := p.Profile.Register(word[0]); !ok {
			err = ErrUnsupportedRegister(word[0])
			return
		}
		v = Value{Register: word[0]}
		return
	}

	err = ErrOperandType{Got: word, Expected: req}
	return
}

// Validate checks an already-built program against a machine profile:
// every instruction must be supported and every register must exist.
func Validate(prog *Program, prof *machine.Profile) (errs []*ErrLoad) {
	fail := func(lineNo int, instr Instruction, err error) {
		errs = append(errs, &ErrLoad{LineNo: lineNo, Line: instr.String(), Err: err})
	}

	for _, instr := range prog.Instructions {
		if !prof.Supports(instr.Op.String()) {
			fail(instr.Line, instr, ErrUnsupportedOp(instr.Op.String()))
			continue
		}
		for _, arg := range instr.Args {
			for _, v := range argRegisters(arg) {
				if _, ok := prof.Register(v); !ok {
					fail(instr.Line, instr, ErrUnsupportedRegister(v))
				}
			}
		}
	}
	return
}

// argRegisters lists the register names one operand mentions.
func argRegisters(arg Operand) (names []byte) {
	switch arg.Kind {
	case OPERAND_VALUE:
		if arg.Value.IsRegister() {
			names = append(names, arg.Value.Register)
		}
	case OPERAND_COND:
		if arg.Cond.Lhs.IsRegister() {
			names = append(names, arg.Cond.Lhs.Register)
		}
		if arg.Cond.Rhs.IsRegister() {
			names = append(names, arg.Cond.Rhs.Register)
		}
	}
	return
}
