package tokens

import (
	"fmt"
	"strconv"
)

type Kind int

const (
	KindDeclaration Kind = iota
	KindIdentifier
	KindMemory
	KindKeyword
	KindOperator
	KindLiteral
	KindProcedure
	KindExpressionStart
	KindExpressionEnd
)

func (k Kind) String() string {
	switch k {
	case KindDeclaration:
		return "declaration"
	case KindIdentifier:
		return "identifier"
	case KindMemory:
		return "memory"
	case KindKeyword:
		return "keyword"
	case KindOperator:
		return "operator"
	case KindLiteral:
		return "literal"
	case KindProcedure:
		return "procedure"
	case KindExpressionStart:
		return "expression start"
	case KindExpressionEnd:
		return "expression end"
	default:
		return "unknown"
	}
}

// Pos is the source position the front end attached to a token. The zero
// value means the position is unknown.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is one of the variant structs below. The set is closed: only this
// package can add variants.
type Token interface {
	Kind() Kind
	Position() Pos
	String() string
	token()
}

type Declaration struct {
	Pos   Pos
	Name  string
	Size  int
	Label string
}

type Identifier struct {
	Pos   Pos
	Name  string
	Label string
	Size  int
}

type Memory struct {
	Pos      Pos
	Location string
}

type Keyword struct {
	Pos   Pos
	Value KeywordValue
}

type Operator struct {
	Pos   Pos
	Value OperatorValue
}

type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	FloatLiteral
	StringLiteral
)

func (k LiteralKind) String() string {
	switch k {
	case IntLiteral:
		return "int"
	case FloatLiteral:
		return "float"
	case StringLiteral:
		return "string"
	default:
		return "unknown"
	}
}

type Literal struct {
	Pos   Pos
	Type  LiteralKind
	Int   int64
	Float float64
	Text  string
	Label string
}

type Procedure struct {
	Pos         Pos
	Name        string
	Returns     LiteralKind
	Label       string
	ReturnLabel string
	Params      []string
}

type ExpressionStart struct {
	Pos Pos
}

type ExpressionEnd struct {
	Pos Pos
}

func (Declaration) token()     {}
func (Identifier) token()      {}
func (Memory) token()          {}
func (Keyword) token()         {}
func (Operator) token()        {}
func (Literal) token()         {}
func (Procedure) token()       {}
func (ExpressionStart) token() {}
func (ExpressionEnd) token()   {}

func (Declaration) Kind() Kind     { return KindDeclaration }
func (Identifier) Kind() Kind      { return KindIdentifier }
func (Memory) Kind() Kind          { return KindMemory }
func (Keyword) Kind() Kind         { return KindKeyword }
func (Operator) Kind() Kind        { return KindOperator }
func (Literal) Kind() Kind         { return KindLiteral }
func (Procedure) Kind() Kind       { return KindProcedure }
func (ExpressionStart) Kind() Kind { return KindExpressionStart }
func (ExpressionEnd) Kind() Kind   { return KindExpressionEnd }

func (t Declaration) Position() Pos     { return t.Pos }
func (t Identifier) Position() Pos      { return t.Pos }
func (t Memory) Position() Pos          { return t.Pos }
func (t Keyword) Position() Pos         { return t.Pos }
func (t Operator) Position() Pos        { return t.Pos }
func (t Literal) Position() Pos         { return t.Pos }
func (t Procedure) Position() Pos       { return t.Pos }
func (t ExpressionStart) Position() Pos { return t.Pos }
func (t ExpressionEnd) Position() Pos   { return t.Pos }

func (t Declaration) String() string {
	return fmt.Sprintf("<declaration %s:%d>", t.Name, t.Size)
}

func (t Identifier) String() string {
	return fmt.Sprintf("<identifier %s>", t.Name)
}

func (t Memory) String() string {
	return fmt.Sprintf("<memory %s>", t.Location)
}

func (t Keyword) String() string {
	return fmt.Sprintf("<keyword %s>", t.Value)
}

func (t Operator) String() string {
	return fmt.Sprintf("<operator %s>", t.Value)
}

func (t Literal) String() string {
	switch t.Type {
	case IntLiteral:
		return fmt.Sprintf("<int %d>", t.Int)
	case FloatLiteral:
		return fmt.Sprintf("<float %s>", strconv.FormatFloat(t.Float, 'g', -1, 64))
	default:
		return fmt.Sprintf("<string %q>", t.Text)
	}
}

func (t Procedure) String() string {
	return fmt.Sprintf("<procedure %s %s>", t.Name, t.Returns)
}

func (ExpressionStart) String() string { return "<(>" }
func (ExpressionEnd) String() string   { return "<)>" }

func NewInt(value int64) Literal {
	return Literal{Type: IntLiteral, Int: value}
}

func NewFloat(value float64) Literal {
	return Literal{Type: FloatLiteral, Float: value}
}

func NewString(text string) Literal {
	return Literal{Type: StringLiteral, Text: text}
}

// IsOperand reports whether t can be consumed as a value by an operator or a
// syscall.
func IsOperand(t Token) bool {
	switch t.(type) {
	case Identifier, Literal, Memory:
		return true
	default:
		return false
	}
}
