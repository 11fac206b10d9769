package codegen

import (
	"fmt"
	"strings"

	"github.com/iley/dang/internal/tokens"
)

// Diagnostic locates an error in the token stream.
type Diagnostic struct {
	// Op is the lowering step that failed, e.g. "assign" or "syscall".
	Op    string
	At    tokens.Handle
	Token string
	Pos   tokens.Pos
	Msg   string
	Err   error
}

func (d Diagnostic) format(kind string) string {
	var sb strings.Builder
	sb.WriteString(kind)
	if d.Op != "" {
		fmt.Fprintf(&sb, " in %s", d.Op)
	}
	if d.At != tokens.None {
		fmt.Fprintf(&sb, " at token %d", d.At)
	}
	if d.Token != "" {
		fmt.Fprintf(&sb, " %s", d.Token)
	}
	if d.Pos.IsValid() {
		fmt.Fprintf(&sb, " (%s)", d.Pos)
	}
	if d.Msg != "" {
		fmt.Fprintf(&sb, ": %s", d.Msg)
	}
	if d.Err != nil {
		fmt.Fprintf(&sb, ": %v", d.Err)
	}
	return sb.String()
}

// StructuralError reports a token of a kind the lowering step does not
// accept in that position.
type StructuralError struct {
	Diagnostic
}

func (e *StructuralError) Error() string { return e.format("structural error") }
func (e *StructuralError) Unwrap() error { return e.Err }

// ConsistencyError reports a run of tokens that violates a size limit, or a
// stream mutation that cannot be carried out.
type ConsistencyError struct {
	Diagnostic
}

func (e *ConsistencyError) Error() string { return e.format("consistency error") }
func (e *ConsistencyError) Unwrap() error { return e.Err }

// ResourceError reports a failure to write the output artifact.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource error: cannot write %q: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

func (g *Generator) diagnostic(op string, h tokens.Handle, format string, args ...any) Diagnostic {
	d := Diagnostic{Op: op, At: h, Msg: fmt.Sprintf(format, args...)}
	if tok, err := g.stream.At(h); err == nil {
		d.Token = tok.String()
		d.Pos = tok.Position()
	}
	return d
}

func (g *Generator) structural(op string, h tokens.Handle, format string, args ...any) error {
	return &StructuralError{g.diagnostic(op, h, format, args...)}
}

func (g *Generator) consistency(op string, h tokens.Handle, format string, args ...any) error {
	return &ConsistencyError{g.diagnostic(op, h, format, args...)}
}

// mutation wraps a failed stream edit.
func (g *Generator) mutation(op string, h tokens.Handle, err error) error {
	if err == nil {
		return nil
	}
	d := g.diagnostic(op, h, "cannot rewrite token stream")
	d.Err = err
	return &ConsistencyError{d}
}
