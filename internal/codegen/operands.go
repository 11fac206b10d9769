package codegen

import (
	"fmt"
	"math"

	"github.com/iley/dang/internal/asm"
	"github.com/iley/dang/internal/tokens"
)

const (
	// Operator results are computed in rax.
	workReg = "rax"
	// Second operands that need a register go to rcx.
	scratchReg = "rcx"
	// Values moved between memory locations pass through rsi.
	transferReg = "rsi"
)

// Sub-registers by access width: 8, 4, 2 and 1 bytes.
var subRegisters = map[string][4]string{
	"rax": {"rax", "eax", "ax", "al"},
	"rbx": {"rbx", "ebx", "bx", "bl"},
	"rcx": {"rcx", "ecx", "cx", "cl"},
	"rdx": {"rdx", "edx", "dx", "dl"},
	"rsi": {"rsi", "esi", "si", "sil"},
	"rdi": {"rdi", "edi", "di", "dil"},
	"r8":  {"r8", "r8d", "r8w", "r8b"},
	"r9":  {"r9", "r9d", "r9w", "r9b"},
	"r10": {"r10", "r10d", "r10w", "r10b"},
	"r11": {"r11", "r11d", "r11w", "r11b"},
}

func isScalarSize(size int) bool {
	return size == 1 || size == 2 || size == 4 || size == 8
}

func subRegister(reg string, size int) string {
	names, ok := subRegisters[reg]
	if !ok {
		panic(fmt.Errorf("unknown register %q", reg))
	}
	switch size {
	case 8:
		return names[0]
	case 4:
		return names[1]
	case 2:
		return names[2]
	case 1:
		return names[3]
	default:
		panic(fmt.Errorf("unsupported register size %d", size))
	}
}

func fitsImm32(v int64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// loadStorage loads the value stored at label into reg, sign-extending
// narrow values. Storage that is not scalar (size 0 for procedures, or
// aggregates) evaluates to its address.
func loadStorage(reg, label string, size int) asm.Line {
	switch size {
	case 8:
		return asm.Op2("mov", asm.Reg(reg), asm.Mem(label))
	case 4:
		return asm.Op2("movsxd", asm.Reg(reg), asm.Mem(label).WithSize(4))
	case 2, 1:
		return asm.Op2("movsx", asm.Reg(reg), asm.Mem(label).WithSize(size))
	default:
		return asm.Op2("mov", asm.Reg(reg), asm.Ref(label))
	}
}

// load returns the instruction that puts the value of the operand at h into
// reg.
func (g *Generator) load(op string, h tokens.Handle, tok tokens.Token, reg string) (asm.Line, error) {
	switch t := tok.(type) {
	case tokens.Literal:
		switch t.Type {
		case tokens.IntLiteral:
			return asm.Op2("mov", asm.Reg(reg), asm.Imm(t.Int)), nil
		case tokens.StringLiteral:
			return asm.Op2("mov", asm.Reg(reg), asm.Ref(t.Label)), nil
		default:
			return asm.Line{}, g.structural(op, h, "float literals have no storage")
		}
	case tokens.Identifier:
		return loadStorage(reg, t.Label, t.Size), nil
	case tokens.Memory:
		return asm.Op2("mov", asm.Reg(reg), asm.Mem(t.Location)), nil
	default:
		return asm.Line{}, g.structural(op, h, "%s cannot be used as a value", tok.Kind())
	}
}

// direct returns tok as a source operand of a two-operand instruction when it
// can be used without loading it into a register first.
func direct(tok tokens.Token) (asm.Arg, bool) {
	switch t := tok.(type) {
	case tokens.Literal:
		if t.Type == tokens.IntLiteral && fitsImm32(t.Int) {
			return asm.Imm(t.Int), true
		}
	case tokens.Identifier:
		if t.Size == 8 {
			return asm.Mem(t.Label), true
		}
	case tokens.Memory:
		return asm.Mem(t.Location), true
	}
	return asm.Arg{}, false
}

// store writes the operand value into storage of the given size at label.
func (g *Generator) store(op string, h tokens.Handle, label string, size int, value tokens.Token) ([]asm.Line, error) {
	if !isScalarSize(size) {
		return nil, g.structural(op, h, "cannot store into %d-byte storage %s", size, label)
	}
	dest := asm.Mem(label).WithSize(size)

	if lit, ok := value.(tokens.Literal); ok && lit.Type == tokens.IntLiteral && fitsImm32(lit.Int) {
		return []asm.Line{asm.Op2("mov", dest, asm.Imm(lit.Int))}, nil
	}

	load, err := g.load(op, h, value, transferReg)
	if err != nil {
		return nil, err
	}
	return []asm.Line{
		load,
		asm.Op2("mov", dest, asm.Reg(subRegister(transferReg, size))),
	}, nil
}

func (g *Generator) newTemp() string {
	label := fmt.Sprintf("%s%d", g.opts.Naming.TempPrefix, g.temps)
	g.temps++
	g.reserve(label, 8)
	return label
}
