package tokenscript

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/iley/dang/internal/tokens"
)

// Value is a token as seen from a script.
type Value struct {
	Token tokens.Token
}

var _ starlark.Value = Value{}

func (v Value) String() string        { return v.Token.String() }
func (v Value) Type() string          { return "token" }
func (v Value) Freeze()               {}
func (v Value) Truth() starlark.Bool  { return starlark.True }
func (v Value) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: token") }

type builtinFunc = func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error)

var builtins = map[string]builtinFunc{
	"decl":      declBuiltin,
	"ident":     identBuiltin,
	"kw":        keywordBuiltin,
	"op":        operatorBuiltin,
	"lit_int":   intBuiltin,
	"lit_float": floatBuiltin,
	"lit_str":   stringBuiltin,
	"proc":      procBuiltin,
	"open":      openBuiltin,
	"close":     closeBuiltin,
}

// callerPos is the script position of the call to the running builtin.
func callerPos(thread *starlark.Thread) tokens.Pos {
	if thread.CallStackDepth() < 2 {
		return tokens.Pos{}
	}
	pos := thread.CallFrame(1).Pos
	return tokens.Pos{Line: int(pos.Line), Col: int(pos.Col)}
}

func callerError(thread *starlark.Thread, b *starlark.Builtin, err error) error {
	if thread.CallStackDepth() < 2 {
		return fmt.Errorf("%s: %w", b.Name(), err)
	}
	return fmt.Errorf("%s: %s: %w", thread.CallFrame(1).Pos, b.Name(), err)
}

func declBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var size int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "size", &size); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, callerError(thread, b, fmt.Errorf("size must be positive, got %d", size))
	}
	return Value{tokens.Declaration{Pos: callerPos(thread), Name: name, Size: size}}, nil
}

func identBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	return Value{tokens.Identifier{Pos: callerPos(thread), Name: name}}, nil
}

func keywordBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "value", &name); err != nil {
		return nil, err
	}
	value, err := tokens.ParseKeyword(name)
	if err != nil {
		return nil, callerError(thread, b, err)
	}
	return Value{tokens.Keyword{Pos: callerPos(thread), Value: value}}, nil
}

func operatorBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "value", &name); err != nil {
		return nil, err
	}
	value, err := tokens.ParseOperator(name)
	if err != nil {
		return nil, callerError(thread, b, err)
	}
	return Value{tokens.Operator{Pos: callerPos(thread), Value: value}}, nil
}

func intBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var value starlark.Int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "value", &value); err != nil {
		return nil, err
	}
	i, ok := value.Int64()
	if !ok {
		return nil, callerError(thread, b, fmt.Errorf("%s does not fit in 64 bits", value))
	}
	lit := tokens.NewInt(i)
	lit.Pos = callerPos(thread)
	return Value{lit}, nil
}

func floatBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var value float64
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "value", &value); err != nil {
		return nil, err
	}
	lit := tokens.NewFloat(value)
	lit.Pos = callerPos(thread)
	return Value{lit}, nil
}

func stringBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var value string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "value", &value); err != nil {
		return nil, err
	}
	lit := tokens.NewString(value)
	lit.Pos = callerPos(thread)
	return Value{lit}, nil
}

var literalKinds = map[string]tokens.LiteralKind{
	"int":    tokens.IntLiteral,
	"float":  tokens.FloatLiteral,
	"string": tokens.StringLiteral,
}

func procBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	returns := "int"
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "returns?", &returns); err != nil {
		return nil, err
	}
	kind, ok := literalKinds[returns]
	if !ok {
		return nil, callerError(thread, b, fmt.Errorf("unknown return type %q", returns))
	}
	return Value{tokens.Procedure{Pos: callerPos(thread), Name: name, Returns: kind}}, nil
}

func openBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	return Value{tokens.ExpressionStart{Pos: callerPos(thread)}}, nil
}

func closeBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	return Value{tokens.ExpressionEnd{Pos: callerPos(thread)}}, nil
}
