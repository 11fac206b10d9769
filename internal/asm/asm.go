package asm

var (
	RAX = Reg("rax")
	RCX = Reg("rcx")
	RDX = Reg("rdx")
	RDI = Reg("rdi")
	RSI = Reg("rsi")
	AL  = Reg("al")
	CL  = Reg("cl")
)

type Line struct {
	Comment string
	Label   string
	Op      string
	Args    []Arg
}

type Arg struct {
	Reg   string
	Imm   *int64
	Label string
	Deref bool
	// Size in bytes of a memory operand. Zero leaves the width to the
	// assembler.
	Size int
	// Raw is emitted as is. Used for data directive operands.
	Raw string
}

func (a Arg) AsDeref() Arg {
	result := a
	result.Deref = true
	return result
}

func (a Arg) WithSize(size int) Arg {
	result := a
	result.Size = size
	return result
}

func Imm(value int64) Arg {
	return Arg{Imm: &value}
}

func Reg(reg string) Arg {
	return Arg{Reg: reg}
}

// Ref is the address of label.
func Ref(label string) Arg {
	return Arg{Label: label}
}

// Mem is the memory stored at label.
func Mem(label string) Arg {
	return Arg{Label: label, Deref: true}
}

func Raw(text string) Arg {
	return Arg{Raw: text}
}

func Op0(op string) Line {
	return Line{Op: op}
}

func Op1(op string, arg Arg) Line {
	return Line{Op: op, Args: []Arg{arg}}
}

func Op2(op string, arg1, arg2 Arg) Line {
	return Line{Op: op, Args: []Arg{arg1, arg2}}
}

func Comment(text string) Line {
	return Line{Comment: text}
}

func Label(text string) Line {
	return Line{Label: text}
}

// Directive is a labeled pseudo-instruction such as "str0: db ...".
func Directive(label, op string, args ...Arg) Line {
	return Line{Label: label, Op: op, Args: args}
}
