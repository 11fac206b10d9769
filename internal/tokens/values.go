package tokens

import "fmt"

type KeywordValue int

const (
	Let KeywordValue = iota
	Fn
	If
	Then
	Elif
	Else
	End
	While
	Do
	Return
	Include
	Syscall
	Macro
)

var keywordNames = map[KeywordValue]string{
	Let:     "let",
	Fn:      "fn",
	If:      "if",
	Then:    "then",
	Elif:    "elif",
	Else:    "else",
	End:     "end",
	While:   "while",
	Do:      "do",
	Return:  "return",
	Include: "include",
	Syscall: "syscall",
	Macro:   "macro",
}

func (k KeywordValue) String() string {
	if name, ok := keywordNames[k]; ok {
		return name
	}
	return fmt.Sprintf("keyword(%d)", int(k))
}

// ClosedByEnd reports whether the keyword starts a run of tokens that a
// matching End terminates.
func (k KeywordValue) ClosedByEnd() bool {
	switch k {
	case Fn, If, While, Macro, Syscall:
		return true
	default:
		return false
	}
}

func ParseKeyword(name string) (KeywordValue, error) {
	for k, n := range keywordNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown keyword: %q", name)
}

type OperatorValue int

const (
	// Unary.
	Not OperatorValue = iota
	Neg

	// Binary.
	Assign
	Add
	Sub
	Mul
	Div
	Mod
	And
	Or
	Xor
	Shl
	Shr
	Eq
	Ne
	Lt
	Gt

	// N-ary.
	Call
)

var operatorNames = map[OperatorValue]string{
	Not:    "not",
	Neg:    "neg",
	Assign: "assign",
	Add:    "add",
	Sub:    "sub",
	Mul:    "mul",
	Div:    "div",
	Mod:    "mod",
	And:    "and",
	Or:     "or",
	Xor:    "xor",
	Shl:    "shl",
	Shr:    "shr",
	Eq:     "eq",
	Ne:     "ne",
	Lt:     "lt",
	Gt:     "gt",
	Call:   "call",
}

func (o OperatorValue) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operator(%d)", int(o))
}

func (o OperatorValue) IsUnary() bool {
	return o == Not || o == Neg
}

func (o OperatorValue) IsBinary() bool {
	return o >= Assign && o <= Gt
}

func ParseOperator(name string) (OperatorValue, error) {
	for o, n := range operatorNames {
		if n == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown operator: %q", name)
}
