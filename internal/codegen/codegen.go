package codegen

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iley/dang/internal/asm"
	"github.com/iley/dang/internal/config"
	"github.com/iley/dang/internal/logs"
	"github.com/iley/dang/internal/tokens"
)

// Program is the generated artifact: four text regions written in order.
type Program struct {
	Header   *asm.Section
	Data     *asm.Section
	Reserved *asm.Section
	Text     *asm.Section
}

func (p *Program) Sections() []*asm.Section {
	return []*asm.Section{p.Header, p.Data, p.Reserved, p.Text}
}

func (p *Program) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, s := range p.Sections() {
		if i > 0 {
			n, err := io.WriteString(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		n, err := s.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (p *Program) String() string {
	var sb strings.Builder
	p.WriteTo(&sb)
	return sb.String()
}

// WriteFile writes p to path. Any failure to create or write the file is a
// ResourceError.
func WriteFile(path string, p *Program) error {
	out, err := os.Create(path)
	if err != nil {
		return &ResourceError{Path: path, Err: err}
	}
	if _, err := p.WriteTo(out); err != nil {
		out.Close()
		return &ResourceError{Path: path, Err: err}
	}
	if err := out.Close(); err != nil {
		return &ResourceError{Path: path, Err: err}
	}
	return nil
}

// Generator lowers a token stream into a Program. A Generator can be reused;
// every call to Generate starts from a clean state.
type Generator struct {
	opts   config.Options
	logger logs.Logger

	stream  *tokens.Stream
	prog    *Program
	strings int
	temps   int
	symbols *symbolTable
	proc    *procState
}

func NewGenerator(opts config.Options, logger logs.Logger) *Generator {
	if logger == nil {
		logger = logs.Discard()
	}
	return &Generator{
		opts:   opts,
		logger: logger,
	}
}

func (g *Generator) reset(stream *tokens.Stream) {
	g.stream = stream
	g.strings = 0
	g.temps = 0
	g.symbols = newSymbolTable()
	g.proc = nil

	header := asm.NewSection("")
	header.Text(fmt.Sprintf("BITS %d", g.opts.Target.Bits))
	g.prog = &Program{
		Header:   header,
		Data:     asm.NewSection("data"),
		Reserved: asm.NewSection("bss"),
		Text:     asm.NewSection("text"),
	}
}

// Generate runs the three passes over stream: literal interning, storage
// reservation and emission. The stream is rewritten in place.
func (g *Generator) Generate(stream *tokens.Stream) (*Program, error) {
	g.reset(stream)

	if err := g.internLiterals(); err != nil {
		return nil, err
	}
	g.logger.Debug("literals interned", "strings", g.strings)

	if err := g.reserveStorage(); err != nil {
		return nil, err
	}
	g.logger.Debug("storage reserved", "reservations", g.prog.Reserved.Lines())

	if err := g.emit(); err != nil {
		return nil, err
	}
	g.logger.Debug("instructions emitted",
		"lines", g.prog.Text.Lines(),
		"temporaries", g.temps,
		"tokens_left", g.stream.Len(),
	)

	return g.prog, nil
}

// Generate is a shortcut for NewGenerator(opts, logger).Generate(stream).
func Generate(stream *tokens.Stream, opts config.Options, logger logs.Logger) (*Program, error) {
	return NewGenerator(opts, logger).Generate(stream)
}
