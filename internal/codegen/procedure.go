package codegen

import (
	"github.com/samber/lo"

	"github.com/iley/dang/internal/asm"
	"github.com/iley/dang/internal/config"
	"github.com/iley/dang/internal/tokens"
)

// procState is the procedure whose body is being emitted.
type procState struct {
	name string
	info procInfo
}

func (g *Generator) endLabel(label string) string {
	return g.opts.Naming.EndPrefix + label
}

// beginProcedure emits the procedure entry. Top-level code jumps over the
// body. Arguments are pushed by the caller in order, so they are popped in
// reverse from under the return address.
func (g *Generator) beginProcedure(h tokens.Handle, p tokens.Procedure) error {
	if g.proc != nil {
		return g.structural("procedure", h, "procedure %s is nested in procedure %s", p.Name, g.proc.name)
	}
	info, ok := g.symbols.procs[p.Name]
	if !ok {
		return g.consistency("procedure", h, "procedure %s has no storage", p.Name)
	}

	lines := []asm.Line{
		asm.Op1("jmp", asm.Ref(g.endLabel(info.label))),
		asm.Label(info.label),
	}
	if params := g.paramSymbols(p.Name); len(params) > 0 {
		lines = append(lines, asm.Op1("pop", asm.RSI))
		for _, param := range lo.Reverse(params) {
			if !isScalarSize(param.size) {
				return g.structural("procedure", h, "parameter %s of %d bytes cannot be passed", param.label, param.size)
			}
			lines = append(lines,
				asm.Op1("pop", asm.RCX),
				asm.Op2("mov", asm.Mem(param.label).WithSize(param.size), asm.Reg(subRegister(scratchReg, param.size))))
		}
		lines = append(lines, asm.Op1("push", asm.RSI))
	}

	g.prog.Text.Emit(lines...)
	g.proc = &procState{name: p.Name, info: info}
	return nil
}

func (g *Generator) endProcedure(h tokens.Handle) error {
	if g.proc == nil {
		return g.structural("end", h, "end outside of a procedure")
	}
	g.prog.Text.Emit(
		asm.Op0("ret"),
		asm.Label(g.endLabel(g.proc.info.label)))
	g.proc = nil
	return nil
}

// lowerReturn stores the operand after the return keyword at h into the
// return slot of the current procedure and returns to the caller.
func (g *Generator) lowerReturn(h tokens.Handle) (tokens.Handle, error) {
	if g.proc == nil {
		return tokens.None, g.structural("return", h, "return outside of a procedure")
	}

	value := g.stream.Next(h)
	tok, err := g.stream.At(value)
	if err != nil || isEnd(tok) {
		// Bare return.
		g.prog.Text.Emit(asm.Op0("ret"))
		next := g.stream.Next(h)
		return next, g.mutation("return", h, g.stream.Remove(h, 1))
	}

	if tok.Kind() == tokens.KindOperator {
		if value, err = g.resolveOperator(value); err != nil {
			return tokens.None, err
		}
		if value == tokens.None {
			return tokens.None, g.structural("return", h, "returned expression has no value")
		}
		tok, _ = g.stream.At(value)
	}
	if !tokens.IsOperand(tok) {
		return tokens.None, g.structural("return", h, "cannot return %s", tok.Kind())
	}

	lines, err := g.store("return", h, g.proc.info.returnLabel, g.proc.info.returnSize, tok)
	if err != nil {
		return tokens.None, err
	}
	g.prog.Text.Emit(lines...)
	g.prog.Text.Emit(asm.Op0("ret"))

	prev := g.stream.Prev(h)
	if err := g.stream.Remove(h, 2); err != nil {
		return tokens.None, g.mutation("return", h, err)
	}
	return g.after(prev), nil
}

// lowerCall pushes the arguments of the call at h, calls the procedure and
// copies its return slot into a temporary.
func (g *Generator) lowerCall(h tokens.Handle, op tokens.Operator, handles []tokens.Handle, toks []tokens.Token) (tokens.Handle, error) {
	if g.opts.Calls.Convention != config.CallsStack {
		return tokens.None, g.structural("call", h, "call lowering is not configured")
	}
	ident, ok := toks[0].(tokens.Identifier)
	if !ok {
		return tokens.None, g.structural("call", h, "cannot call %s (operand 1)", toks[0].Kind())
	}
	info, ok := g.symbols.procs[ident.Name]
	if !ok || info.label != ident.Label {
		return tokens.None, g.structural("call", h, "%s is not a procedure", ident.Name)
	}
	if err := g.checkOperands(h, op, toks); err != nil {
		return tokens.None, err
	}

	var lines []asm.Line
	for i, arg := range toks[1:] {
		load, err := g.load("call", handles[i+1], arg, workReg)
		if err != nil {
			return tokens.None, err
		}
		lines = append(lines, load, asm.Op1("push", asm.RAX))
	}
	temp := g.newTemp()
	lines = append(lines,
		asm.Op1("call", asm.Ref(info.label)),
		loadStorage(workReg, info.returnLabel, info.returnSize),
		asm.Op2("mov", asm.Mem(temp), asm.RAX))
	g.prog.Text.Emit(lines...)
	return g.collapse(h, len(toks), temp)
}
