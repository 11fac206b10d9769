package codegen

import (
	"github.com/iley/dang/internal/asm"
	"github.com/iley/dang/internal/config"
	"github.com/iley/dang/internal/tokens"
)

var arithmeticOps = map[tokens.OperatorValue]string{
	tokens.Add: "add",
	tokens.Sub: "sub",
	tokens.Mul: "imul",
	tokens.And: "and",
	tokens.Or:  "or",
	tokens.Xor: "xor",
}

var comparisonOps = map[tokens.OperatorValue]string{
	tokens.Eq: "sete",
	tokens.Ne: "setne",
	tokens.Lt: "setl",
	tokens.Gt: "setg",
}

var shiftOps = map[tokens.OperatorValue]string{
	tokens.Shl: "shl",
	tokens.Shr: "sar",
}

var unaryOps = map[tokens.OperatorValue]string{
	tokens.Not: "not",
	tokens.Neg: "neg",
}

// arity is the number of operand tokens that follow the operator at h.
func (g *Generator) arity(h tokens.Handle, op tokens.Operator) int {
	switch {
	case op.Value.IsUnary():
		return 1
	case op.Value.IsBinary():
		return 2
	case op.Value == tokens.Call:
		if g.opts.Calls.Convention != config.CallsStack {
			return 1
		}
		tok, err := g.stream.At(g.stream.Next(h))
		if err != nil {
			return 1
		}
		if ident, ok := tok.(tokens.Identifier); ok {
			if info, ok := g.symbols.procs[ident.Name]; ok {
				return 1 + len(info.params)
			}
		}
		return 1
	default:
		return 0
	}
}

// operands returns the handles of the n tokens that follow h.
func (g *Generator) operands(op string, h tokens.Handle, n int) ([]tokens.Handle, []tokens.Token, error) {
	handles := make([]tokens.Handle, 0, n)
	toks := make([]tokens.Token, 0, n)
	cur := h
	for i := range n {
		cur = g.stream.Next(cur)
		tok, err := g.stream.At(cur)
		if err != nil {
			return nil, nil, g.structural(op, h, "missing operand %d", i+1)
		}
		handles = append(handles, cur)
		toks = append(toks, tok)
	}
	return handles, toks, nil
}

// resolveOperator lowers the operator at h together with every operator
// nested in its operands. Nested operators are lowered first, left operand
// before right operand, using an explicit stack bounded by limits.max_depth.
// The result is the handle of the Memory token that replaced the operator
// run, or None if the operator produces no value.
func (g *Generator) resolveOperator(h tokens.Handle) (tokens.Handle, error) {
	stack := []tokens.Handle{h}
	result := tokens.None

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		tok, err := g.stream.At(top)
		if err != nil {
			return tokens.None, g.mutation("operator", top, err)
		}
		op := tok.(tokens.Operator)

		handles, toks, err := g.operands(op.Value.String(), top, g.arity(top, op))
		if err != nil {
			return tokens.None, err
		}
		nested := tokens.None
		for i, t := range toks {
			if t.Kind() == tokens.KindOperator {
				nested = handles[i]
				break
			}
		}
		if nested != tokens.None {
			if len(stack) >= g.opts.Limits.MaxDepth {
				return tokens.None, g.consistency(op.Value.String(), nested,
					"operators nested deeper than %d", g.opts.Limits.MaxDepth)
			}
			stack = append(stack, nested)
			continue
		}

		stack = stack[:len(stack)-1]
		if op.Value == tokens.Assign && len(stack) > 0 {
			return tokens.None, g.structural("assign", top, "assignment has no value and cannot be an operand")
		}
		result, err = g.lowerOperator(top, op, handles, toks)
		if err != nil {
			return tokens.None, err
		}
	}

	return result, nil
}

func (g *Generator) lowerOperator(h tokens.Handle, op tokens.Operator, handles []tokens.Handle, toks []tokens.Token) (tokens.Handle, error) {
	switch {
	case op.Value == tokens.Assign:
		return tokens.None, g.lowerAssign(h, toks)
	case op.Value == tokens.Call:
		return g.lowerCall(h, op, handles, toks)
	case op.Value.IsUnary():
		return g.lowerUnary(h, op, toks)
	case op.Value.IsBinary():
		return g.lowerBinary(h, op, toks)
	default:
		return tokens.None, g.structural(op.Value.String(), h, "operator has no lowering")
	}
}

func (g *Generator) lowerAssign(h tokens.Handle, toks []tokens.Token) error {
	var label string
	var size int
	switch dest := toks[0].(type) {
	case tokens.Identifier:
		label, size = dest.Label, dest.Size
	case tokens.Declaration:
		label, size = dest.Label, dest.Size
	default:
		return g.structural("assign", h, "cannot assign to %s (operand 1)", dest.Kind())
	}
	if !tokens.IsOperand(toks[1]) {
		return g.structural("assign", h, "cannot assign from %s (operand 2)", toks[1].Kind())
	}

	lines, err := g.store("assign", h, label, size, toks[1])
	if err != nil {
		return err
	}
	g.prog.Text.Emit(lines...)
	return g.mutation("assign", h, g.stream.Remove(h, 3))
}

func (g *Generator) checkOperands(h tokens.Handle, op tokens.Operator, toks []tokens.Token) error {
	for i, tok := range toks {
		if !tokens.IsOperand(tok) {
			return g.structural(op.Value.String(), h, "illegal %s in operand %d", tok.Kind(), i+1)
		}
	}
	return nil
}

// collapse replaces the operator at h and its n operands with a Memory token
// for location.
func (g *Generator) collapse(h tokens.Handle, n int, location string) (tokens.Handle, error) {
	tok, _ := g.stream.At(h)
	mem, err := g.stream.Replace(h, tokens.Memory{Pos: tok.Position(), Location: location})
	if err != nil {
		return tokens.None, g.mutation("operator", h, err)
	}
	if err := g.stream.DeleteRun(mem, n); err != nil {
		return tokens.None, g.mutation("operator", mem, err)
	}
	return mem, nil
}

func (g *Generator) lowerBinary(h tokens.Handle, op tokens.Operator, toks []tokens.Token) (tokens.Handle, error) {
	name := op.Value.String()
	if err := g.checkOperands(h, op, toks); err != nil {
		return tokens.None, err
	}

	first, err := g.load(name, h, toks[0], workReg)
	if err != nil {
		return tokens.None, err
	}
	lines := []asm.Line{first}

	// source is the second operand as an instruction argument. It is loaded
	// into rcx when it cannot be used directly.
	source := func(forceRegister bool) (asm.Arg, error) {
		if arg, ok := direct(toks[1]); ok && !forceRegister {
			return arg, nil
		}
		second, err := g.load(name, h, toks[1], scratchReg)
		if err != nil {
			return asm.Arg{}, err
		}
		lines = append(lines, second)
		return asm.RCX, nil
	}

	if mnemonic, ok := arithmeticOps[op.Value]; ok {
		src, err := source(false)
		if err != nil {
			return tokens.None, err
		}
		lines = append(lines, asm.Op2(mnemonic, asm.RAX, src))
	} else if mnemonic, ok := comparisonOps[op.Value]; ok {
		src, err := source(false)
		if err != nil {
			return tokens.None, err
		}
		lines = append(lines,
			asm.Op2("cmp", asm.RAX, src),
			asm.Op1(mnemonic, asm.AL),
			asm.Op2("movzx", asm.RAX, asm.AL))
	} else if mnemonic, ok := shiftOps[op.Value]; ok {
		if _, err := source(true); err != nil {
			return tokens.None, err
		}
		lines = append(lines, asm.Op2(mnemonic, asm.RAX, asm.CL))
	} else if op.Value == tokens.Div || op.Value == tokens.Mod {
		if _, err := source(true); err != nil {
			return tokens.None, err
		}
		lines = append(lines, asm.Op0("cqo"), asm.Op1("idiv", asm.RCX))
		if op.Value == tokens.Mod {
			lines = append(lines, asm.Op2("mov", asm.RAX, asm.RDX))
		}
	} else {
		return tokens.None, g.structural(name, h, "operator has no lowering")
	}

	temp := g.newTemp()
	lines = append(lines, asm.Op2("mov", asm.Mem(temp), asm.RAX))
	g.prog.Text.Emit(lines...)
	return g.collapse(h, 2, temp)
}

func (g *Generator) lowerUnary(h tokens.Handle, op tokens.Operator, toks []tokens.Token) (tokens.Handle, error) {
	name := op.Value.String()
	if err := g.checkOperands(h, op, toks); err != nil {
		return tokens.None, err
	}
	mnemonic, ok := unaryOps[op.Value]
	if !ok {
		return tokens.None, g.structural(name, h, "operator has no lowering")
	}
	load, err := g.load(name, h, toks[0], workReg)
	if err != nil {
		return tokens.None, err
	}
	temp := g.newTemp()
	g.prog.Text.Emit(
		load,
		asm.Op1(mnemonic, asm.RAX),
		asm.Op2("mov", asm.Mem(temp), asm.RAX))
	return g.collapse(h, 1, temp)
}
