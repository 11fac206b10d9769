package codegen

import (
	"fmt"
	"regexp"

	"github.com/samber/lo"

	"github.com/iley/dang/internal/asm"
	"github.com/iley/dang/internal/tokens"
	"github.com/iley/dang/internal/util"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type symbol struct {
	label string
	size  int
}

type procInfo struct {
	label       string
	returnLabel string
	returnSize  int
	params      []string
}

type symbolTable struct {
	globals map[string]symbol
	locals  map[string]map[string]symbol
	procs   map[string]procInfo
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		globals: make(map[string]symbol),
		locals:  make(map[string]map[string]symbol),
		procs:   make(map[string]procInfo),
	}
}

// lookup resolves name as seen from inside proc ("" for top level). A
// procedure resolves to its label with size 0, so it evaluates to its address.
func (st *symbolTable) lookup(proc, name string) (symbol, bool) {
	if proc != "" {
		if sym, ok := st.locals[proc][name]; ok {
			return sym, true
		}
	}
	if sym, ok := st.globals[name]; ok {
		return sym, true
	}
	if p, ok := st.procs[name]; ok {
		return symbol{label: p.label}, true
	}
	return symbol{}, false
}

// internLiterals assigns data labels to string literals in encounter order.
func (g *Generator) internLiterals() error {
	for h, tok := range g.stream.All() {
		lit, ok := tok.(tokens.Literal)
		if !ok || lit.Type != tokens.StringLiteral {
			// Float literals get no storage yet.
			continue
		}
		lit.Label = fmt.Sprintf("%s%d", g.opts.Naming.StringPrefix, g.strings)
		g.strings++

		args := []asm.Arg{asm.Raw("0x00")}
		if lit.Text != "" {
			args = append([]asm.Arg{asm.Raw(util.NasmBytes(lit.Text))}, args...)
		}
		g.prog.Data.Emit(asm.Directive(lit.Label, "db", args...))

		if err := g.stream.Set(h, lit); err != nil {
			return g.mutation("literal", h, err)
		}
	}
	return nil
}

func (g *Generator) returnSize(kind tokens.LiteralKind) int {
	switch kind {
	case tokens.IntLiteral:
		return 8
	case tokens.FloatLiteral:
		return 4
	default:
		return g.opts.Target.WordSize
	}
}

func (g *Generator) varLabel(proc, name string) string {
	if proc == "" {
		return g.opts.Naming.VarPrefix + name
	}
	return g.opts.Naming.VarPrefix + proc + "@" + name
}

func (g *Generator) reserve(label string, size int) {
	g.prog.Reserved.Emit(asm.Directive(label, "resb", asm.Imm(int64(size))))
}

type pendingIdentifier struct {
	h    tokens.Handle
	proc string
}

// reserveStorage names and reserves declarations, procedure return slots and
// parameters, then resolves identifiers against the declared names.
func (g *Generator) reserveStorage() error {
	var idents []pendingIdentifier
	proc := ""
	depth := 0

	for h := g.stream.Head(); h != tokens.None; h = g.stream.Next(h) {
		tok, err := g.stream.At(h)
		if err != nil {
			return g.mutation("reserve", h, err)
		}

		switch t := tok.(type) {
		case tokens.Declaration:
			if err := g.declare(h, t, proc); err != nil {
				return err
			}

		case tokens.Procedure:
			if proc != "" {
				return g.structural("procedure", h, "procedure %s is nested in procedure %s", t.Name, proc)
			}
			last, err := g.declareProcedure(h, t)
			if err != nil {
				return err
			}
			proc = t.Name
			depth = 1
			h = last

		case tokens.Keyword:
			if proc == "" {
				continue
			}
			if t.Value.ClosedByEnd() {
				depth++
			} else if t.Value == tokens.End {
				depth--
				if depth == 0 {
					proc = ""
				}
			}

		case tokens.Identifier:
			idents = append(idents, pendingIdentifier{h: h, proc: proc})
		}
	}

	for _, id := range idents {
		tok, _ := g.stream.At(id.h)
		ident := tok.(tokens.Identifier)
		sym, ok := g.symbols.lookup(id.proc, ident.Name)
		if !ok {
			return g.structural("identifier", id.h, "%s is not declared", ident.Name)
		}
		ident.Label = sym.label
		ident.Size = sym.size
		if err := g.stream.Set(id.h, ident); err != nil {
			return g.mutation("identifier", id.h, err)
		}
	}
	return nil
}

func (g *Generator) declare(h tokens.Handle, decl tokens.Declaration, proc string) error {
	if !namePattern.MatchString(decl.Name) {
		return g.structural("declaration", h, "invalid name %q", decl.Name)
	}
	if decl.Size <= 0 {
		return g.structural("declaration", h, "invalid size %d", decl.Size)
	}

	scope := g.symbols.globals
	if proc != "" {
		scope = g.symbols.locals[proc]
	}
	if _, ok := scope[decl.Name]; ok {
		return g.structural("declaration", h, "%s is already declared in this scope", decl.Name)
	}

	decl.Label = g.varLabel(proc, decl.Name)
	scope[decl.Name] = symbol{label: decl.Label, size: decl.Size}
	g.reserve(decl.Label, decl.Size)

	return g.mutation("declaration", h, g.stream.Set(h, decl))
}

// declareProcedure reserves the return slot of the procedure at h and
// consumes its parameter list. It returns the last handle it looked at.
func (g *Generator) declareProcedure(h tokens.Handle, p tokens.Procedure) (tokens.Handle, error) {
	if !namePattern.MatchString(p.Name) {
		return h, g.structural("procedure", h, "invalid name %q", p.Name)
	}
	if _, ok := g.symbols.procs[p.Name]; ok {
		return h, g.structural("procedure", h, "procedure %s is already declared", p.Name)
	}

	p.Label = g.opts.Naming.ProcPrefix + p.Name
	p.ReturnLabel = g.opts.Naming.ReturnPrefix + p.Name
	size := g.returnSize(p.Returns)
	g.reserve(p.ReturnLabel, size)
	g.symbols.locals[p.Name] = make(map[string]symbol)

	last := h
	next := g.stream.Next(h)
	if tok, err := g.stream.At(next); err == nil && tok.Kind() == tokens.KindExpressionStart {
		if err := g.stream.DeleteRun(h, 1); err != nil {
			return h, g.mutation("procedure", h, err)
		}
		p.Params = nil
		for {
			param := g.stream.Next(last)
			tok, err := g.stream.At(param)
			if err != nil {
				return h, g.structural("procedure", h, "parameter list of %s is not closed", p.Name)
			}
			if tok.Kind() == tokens.KindExpressionEnd {
				if err := g.stream.DeleteRun(last, 1); err != nil {
					return h, g.mutation("procedure", h, err)
				}
				break
			}
			decl, ok := tok.(tokens.Declaration)
			if !ok {
				return h, g.structural("procedure", param, "invalid %s in parameter list of %s", tok.Kind(), p.Name)
			}
			if err := g.declare(param, decl, p.Name); err != nil {
				return h, err
			}
			p.Params = append(p.Params, decl.Name)
			last = param
		}
	}

	g.symbols.procs[p.Name] = procInfo{
		label:       p.Label,
		returnLabel: p.ReturnLabel,
		returnSize:  size,
		params:      p.Params,
	}
	if err := g.stream.Set(h, p); err != nil {
		return h, g.mutation("procedure", h, err)
	}
	return last, nil
}

// paramSymbols returns the storage of the parameters of proc in declaration
// order.
func (g *Generator) paramSymbols(proc string) []symbol {
	info := g.symbols.procs[proc]
	return lo.Map(info.params, func(name string, _ int) symbol {
		return g.symbols.locals[proc][name]
	})
}
