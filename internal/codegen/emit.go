package codegen

import (
	"github.com/iley/dang/internal/asm"
	"github.com/iley/dang/internal/tokens"
)

// emit walks the stream once, lowering every token it can and rewriting the
// stream as operators and syscalls are consumed.
func (g *Generator) emit() error {
	entry := g.opts.Target.Entry
	g.prog.Text.Text("global " + entry)
	g.prog.Text.Emit(asm.Label(entry))

	h := g.stream.Head()
	for h != tokens.None {
		tok, err := g.stream.At(h)
		if err != nil {
			return g.mutation("emit", h, err)
		}

		next := g.stream.Next(h)
		switch t := tok.(type) {
		case tokens.Literal:
			line, err := g.load("literal", h, t, workReg)
			if err != nil {
				return err
			}
			g.prog.Text.Emit(line)

		case tokens.Operator:
			prev := g.stream.Prev(h)
			result, err := g.resolveOperator(h)
			if err != nil {
				return err
			}
			if result != tokens.None {
				next = g.stream.Next(result)
			} else {
				next = g.after(prev)
			}

		case tokens.Procedure:
			if err := g.beginProcedure(h, t); err != nil {
				return err
			}

		case tokens.Keyword:
			if next, err = g.emitKeyword(h, t, next); err != nil {
				return err
			}

		case tokens.Declaration, tokens.Identifier, tokens.Memory,
			tokens.ExpressionStart, tokens.ExpressionEnd:
			// Nothing to emit at statement level.

		default:
			return g.structural("emit", h, "unexpected %s", tok.Kind())
		}
		h = next
	}

	if g.proc != nil {
		return g.structural("procedure", tokens.None, "procedure %s is not closed by end", g.proc.name)
	}

	g.prog.Text.Emit(
		asm.Op2("mov", asm.RAX, asm.Imm(g.opts.Target.ExitSyscall)),
		asm.Op2("mov", asm.RDI, asm.Imm(0)),
		asm.Op0("syscall"))
	return nil
}

func (g *Generator) emitKeyword(h tokens.Handle, kw tokens.Keyword, next tokens.Handle) (tokens.Handle, error) {
	switch kw.Value {
	case tokens.Syscall:
		return g.lowerSyscall(h)
	case tokens.Return:
		return g.lowerReturn(h)
	case tokens.End:
		return next, g.endProcedure(h)
	case tokens.Let, tokens.Include:
		return next, nil
	default:
		return tokens.None, g.structural(kw.Value.String(), h, "keyword has no lowering")
	}
}
