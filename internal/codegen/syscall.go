package codegen

import (
	"github.com/iley/dang/internal/asm"
	"github.com/iley/dang/internal/tokens"
)

func isEnd(t tokens.Token) bool {
	kw, ok := t.(tokens.Keyword)
	return ok && kw.Value == tokens.End
}

// lowerSyscall loads the run of tokens between the syscall keyword at h and
// its end into the syscall registers, number first, then deletes the whole
// block. Nothing is emitted when the block is rejected.
func (g *Generator) lowerSyscall(h tokens.Handle) (tokens.Handle, error) {
	end, ok := g.stream.FindNext(g.stream.Next(h), isEnd)
	if !ok {
		return tokens.None, g.structural("syscall", h, "block is not terminated by end")
	}

	registers := g.opts.Target.SyscallRegisters
	var args []tokens.Handle
	for cur := g.stream.Next(h); cur != end; cur = g.stream.Next(cur) {
		args = append(args, cur)
	}
	if len(args) == 0 {
		return tokens.None, g.structural("syscall", h, "syscall number missing")
	}
	if len(args) > len(registers) {
		return tokens.None, g.consistency("syscall", h,
			"%d arguments given, at most %d allowed", len(args)-1, len(registers)-1)
	}

	lines := make([]asm.Line, 0, len(args)+1)
	for i, arg := range args {
		tok, err := g.stream.At(arg)
		if err != nil {
			return tokens.None, g.mutation("syscall", arg, err)
		}
		if !tokens.IsOperand(tok) {
			return tokens.None, g.structural("syscall", arg, "%s cannot be a syscall argument", tok.Kind())
		}
		line, err := g.load("syscall", arg, tok, registers[i])
		if err != nil {
			return tokens.None, err
		}
		lines = append(lines, line)
	}
	lines = append(lines, asm.Op0("syscall"))

	prev := g.stream.Prev(h)
	if err := g.stream.Remove(h, len(args)+2); err != nil {
		return tokens.None, g.mutation("syscall", h, err)
	}
	g.prog.Text.Emit(lines...)
	return g.after(prev), nil
}

// after is the cursor that follows prev once the tokens after it have been
// rewritten.
func (g *Generator) after(prev tokens.Handle) tokens.Handle {
	if prev == tokens.None {
		return g.stream.Head()
	}
	return g.stream.Next(prev)
}
