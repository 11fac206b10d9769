package codegen

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/iley/dang/internal/config"
	"github.com/iley/dang/internal/tokens"
)

func TestResolve_BinaryOperators(t *testing.T) {
	testCases := []struct {
		op       tokens.OperatorValue
		expected string
	}{
		{tokens.Add, "    mov rax, 5\n    add rax, 3\n"},
		{tokens.Sub, "    mov rax, 5\n    sub rax, 3\n"},
		{tokens.Mul, "    mov rax, 5\n    imul rax, 3\n"},
		{tokens.And, "    mov rax, 5\n    and rax, 3\n"},
		{tokens.Or, "    mov rax, 5\n    or rax, 3\n"},
		{tokens.Xor, "    mov rax, 5\n    xor rax, 3\n"},
		{tokens.Shl, "    mov rax, 5\n    mov rcx, 3\n    shl rax, cl\n"},
		{tokens.Shr, "    mov rax, 5\n    mov rcx, 3\n    sar rax, cl\n"},
		{tokens.Div, "    mov rax, 5\n    mov rcx, 3\n    cqo\n    idiv rcx\n"},
		{tokens.Mod, "    mov rax, 5\n    mov rcx, 3\n    cqo\n    idiv rcx\n    mov rax, rdx\n"},
		{tokens.Eq, "    mov rax, 5\n    cmp rax, 3\n    sete al\n    movzx rax, al\n"},
		{tokens.Ne, "    mov rax, 5\n    cmp rax, 3\n    setne al\n    movzx rax, al\n"},
		{tokens.Lt, "    mov rax, 5\n    cmp rax, 3\n    setl al\n    movzx rax, al\n"},
		{tokens.Gt, "    mov rax, 5\n    cmp rax, 3\n    setg al\n    movzx rax, al\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.op.String(), func(t *testing.T) {
			g, stream, err := run(config.Default(), op(tc.op), num(5), num(3))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			expected := tc.expected + "    mov [_tmp0], rax\n"
			if got := body(t, g); got != expected {
				t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
			}
			if stream.Len() != 1 {
				t.Errorf("expected a single result token, got:\n%s", stream)
			}
		})
	}
}

func TestResolve_UnaryOperators(t *testing.T) {
	testCases := []struct {
		op       tokens.OperatorValue
		mnemonic string
	}{
		{tokens.Not, "not"},
		{tokens.Neg, "neg"},
	}

	for _, tc := range testCases {
		t.Run(tc.op.String(), func(t *testing.T) {
			g, stream, err := run(config.Default(), op(tc.op), num(5), num(6))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			expected := "    mov rax, 5\n" +
				"    " + tc.mnemonic + " rax\n" +
				"    mov [_tmp0], rax\n" +
				"    mov rax, 6\n"
			if got := body(t, g); got != expected {
				t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
			}
			want := []tokens.Token{tokens.Memory{Location: "_tmp0"}, tokens.NewInt(6)}
			if got := stream.Tokens(); !reflect.DeepEqual(got, want) {
				t.Errorf("unexpected stream: %v", got)
			}
		})
	}
}

func TestResolve_NestedOperatorsLeftFirst(t *testing.T) {
	g, stream, err := run(config.Default(),
		op(tokens.Assign), decl("x", 8),
		op(tokens.Add),
		op(tokens.Sub), num(1), num(2),
		op(tokens.Mul), num(3), num(4),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "    mov rax, 1\n" +
		"    sub rax, 2\n" +
		"    mov [_tmp0], rax\n" +
		"    mov rax, 3\n" +
		"    imul rax, 4\n" +
		"    mov [_tmp1], rax\n" +
		"    mov rax, [_tmp0]\n" +
		"    add rax, [_tmp1]\n" +
		"    mov [_tmp2], rax\n" +
		"    mov rsi, [_tmp2]\n" +
		"    mov qword [_var_x], rsi\n"
	if got := body(t, g); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
	if stream.Len() != 0 {
		t.Errorf("expected no residual tokens, got:\n%s", stream)
	}
}

func TestResolve_SizedOperands(t *testing.T) {
	g, _, err := run(config.Default(),
		decl("a", 4),
		decl("b", 2),
		decl("c", 1),
		decl("big", 8),
		op(tokens.Add), ident("a"), ident("b"),
		op(tokens.Assign), ident("c"), ident("big"),
		op(tokens.Assign), ident("b"), num(1<<40),
		op(tokens.Sub), ident("big"), ident("big"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "    movsxd rax, dword [_var_a]\n" +
		"    movsx rcx, word [_var_b]\n" +
		"    add rax, rcx\n" +
		"    mov [_tmp0], rax\n" +
		"    mov rsi, [_var_big]\n" +
		"    mov byte [_var_c], sil\n" +
		"    mov rsi, 1099511627776\n" +
		"    mov word [_var_b], si\n" +
		"    mov rax, [_var_big]\n" +
		"    sub rax, [_var_big]\n" +
		"    mov [_tmp1], rax\n"
	if got := body(t, g); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestResolve_AddressOperands(t *testing.T) {
	opts := config.Default()
	g, _, err := run(opts,
		decl("p", 8),
		decl("buf", 16),
		op(tokens.Assign), ident("p"), str("msg"),
		op(tokens.Add), ident("buf"), num(8),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "    mov rsi, str0\n" +
		"    mov qword [_var_p], rsi\n" +
		"    mov rax, _var_buf\n" +
		"    add rax, 8\n" +
		"    mov [_tmp0], rax\n"
	if got := body(t, g); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestResolve_StructuralErrors(t *testing.T) {
	testCases := []struct {
		name    string
		toks    []tokens.Token
		message string
	}{
		{
			name:    "assign to literal",
			toks:    []tokens.Token{op(tokens.Assign), num(5), num(3)},
			message: "cannot assign to literal",
		},
		{
			name:    "assign from keyword",
			toks:    []tokens.Token{op(tokens.Assign), decl("x", 8), kw(tokens.Let)},
			message: "operand 2",
		},
		{
			name:    "assign to aggregate",
			toks:    []tokens.Token{op(tokens.Assign), decl("buf", 16), num(1)},
			message: "16-byte storage",
		},
		{
			name:    "keyword operand",
			toks:    []tokens.Token{op(tokens.Add), kw(tokens.Let), num(3)},
			message: "operand 1",
		},
		{
			name:    "declaration operand",
			toks:    []tokens.Token{op(tokens.Sub), num(3), decl("x", 8)},
			message: "operand 2",
		},
		{
			name:    "missing operand",
			toks:    []tokens.Token{op(tokens.Add), num(5)},
			message: "missing operand 2",
		},
		{
			name:    "nested assign",
			toks:    []tokens.Token{op(tokens.Add), op(tokens.Assign), decl("x", 8), num(1), num(2)},
			message: "cannot be an operand",
		},
		{
			name:    "float operand",
			toks:    []tokens.Token{op(tokens.Add), tokens.NewFloat(1.5), num(1)},
			message: "float",
		},
		{
			name:    "call without convention",
			toks:    []tokens.Token{tokens.Procedure{Name: "f"}, kw(tokens.End), op(tokens.Call), ident("f")},
			message: "call lowering is not configured",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := run(config.Default(), tc.toks...)
			var structural *StructuralError
			if !errors.As(err, &structural) {
				t.Fatalf("expected a StructuralError, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("expected error to mention %q, got %q", tc.message, err)
			}
		})
	}
}

func TestResolve_DepthLimit(t *testing.T) {
	negs := func(n int) []tokens.Token {
		var toks []tokens.Token
		for range n {
			toks = append(toks, op(tokens.Neg))
		}
		return append(toks, num(1))
	}

	opts := config.Default()
	opts.Limits.MaxDepth = 3

	if _, _, err := run(opts, negs(3)...); err != nil {
		t.Fatalf("unexpected error at the limit: %v", err)
	}

	_, _, err := run(opts, negs(4)...)
	var consistency *ConsistencyError
	if !errors.As(err, &consistency) {
		t.Fatalf("expected a ConsistencyError, got %v", err)
	}
}

func TestResolve_DeepNestingIsIterative(t *testing.T) {
	const depth = 10000
	opts := config.Default()
	opts.Limits.MaxDepth = depth

	toks := make([]tokens.Token, 0, depth+1)
	for range depth {
		toks = append(toks, op(tokens.Neg))
	}
	toks = append(toks, num(1))

	g, stream, err := run(opts, toks...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []tokens.Token{tokens.Memory{Location: "_tmp9999"}}
	if got := stream.Tokens(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected stream: %v", got)
	}
	if got := g.prog.Reserved.Lines(); got != depth {
		t.Errorf("expected %d temporaries, got %d", depth, got)
	}
}
