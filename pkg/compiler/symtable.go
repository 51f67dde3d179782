package compiler

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"tauc/pkg/diag"
)

type SymbolKind int

const (
	SymbolLet SymbolKind = iota
	SymbolProc
	SymbolType
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolLet:
		return "let"
	case SymbolProc:
		return "proc"
	case SymbolType:
		return "type"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// Symbol is one top-level declaration.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Extern    bool
	Prototype bool // declared without a definition
	Arity     int  // formal argument count, procs only
	Loc       diag.Location
}

// ErrDuplicate is the cause of every Define conflict.
var ErrDuplicate = errors.New("duplicate declaration")

// SymbolTable maps top-level names to their declarations, in declaration
// order. A prototype may be followed by one definition of the same kind;
// any other redeclaration is a conflict.
type SymbolTable struct {
	symbols map[string]Symbol
	order   []string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]Symbol)}
}

// Define records sym. On conflict the table is unchanged and the error
// wraps ErrDuplicate with the earlier location.
func (s *SymbolTable) Define(sym Symbol) error {
	prev, ok := s.symbols[sym.Name]
	if !ok {
		s.symbols[sym.Name] = sym
		s.order = append(s.order, sym.Name)
		return nil
	}

	if prev.Kind == sym.Kind {
		switch {
		case prev.Prototype && !sym.Prototype:
			// definition completes an earlier prototype
			sym.Extern = sym.Extern || prev.Extern
			s.symbols[sym.Name] = sym
			return nil
		case sym.Prototype:
			return nil
		}
	}
	return errors.Wrapf(ErrDuplicate, "%s `%s`, previously declared at %s", sym.Kind, sym.Name, prev.Loc)
}

// Lookup returns the symbol and whether it was found.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

func (s *SymbolTable) Len() int { return len(s.order) }

// All yields symbols in the order their names were first declared.
func (s *SymbolTable) All() iter.Seq[Symbol] {
	return func(yield func(Symbol) bool) {
		for _, name := range s.order {
			if !yield(s.symbols[name]) {
				return
			}
		}
	}
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	if len(s.symbols) == 0 {
		return "Symbols: (empty)\n"
	}
	names := make([]string, 0, len(s.symbols))
	for name := range s.symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Symbols:\n")
	for _, name := range names {
		sym := s.symbols[name]
		var flags []string
		if sym.Extern {
			flags = append(flags, "extern")
		}
		if sym.Prototype {
			flags = append(flags, "prototype")
		}
		if sym.Kind == SymbolProc {
			flags = append(flags, fmt.Sprintf("arity=%d", sym.Arity))
		}
		fmt.Fprintf(&sb, "  %-20s  %-4s  %s  %s\n", name, sym.Kind, sym.Loc, strings.Join(flags, " "))
	}
	return sb.String()
}

// Collect builds the declaration table of unit, logging a warning for each
// conflicting redeclaration. It returns the table and the number of
// warnings logged.
func Collect(unit *CompilationUnit, sink diag.Sink) (*SymbolTable, int) {
	if sink == nil {
		sink = diag.Default()
	}
	table := NewSymbolTable()
	if unit == nil || unit.Decls == nil {
		return table, 0
	}

	warnings := 0
	for _, decl := range unit.Decls.Children() {
		sym, ok := symbolOf(decl, false)
		if !ok {
			continue
		}
		if err := table.Define(sym); err != nil {
			sink.Log(diag.Warn, sym.Loc, "%v", err)
			warnings++
		}
	}
	return table, warnings
}

func symbolOf(n Node, extern bool) (Symbol, bool) {
	switch d := n.(type) {
	case *ExternDecl:
		return symbolOf(d.Decl, true)
	case *LetDecl:
		return declSymbol(d.Name, SymbolLet, extern, d.Def), true
	case *TypeDecl:
		return declSymbol(d.Name, SymbolType, extern, d.Def), true
	case *ProcDecl:
		sym := declSymbol(d.Name, SymbolProc, extern, d.Def)
		if d.Args != nil {
			sym.Arity = d.Args.Len()
		}
		return sym, true
	}
	return Symbol{}, false
}

func declSymbol(name *Atom, kind SymbolKind, extern bool, def Node) Symbol {
	_, proto := def.(*Prototype)
	return Symbol{
		Name:      name.Text(),
		Kind:      kind,
		Extern:    extern,
		Prototype: proto,
		Loc:       name.Tok().Loc,
	}
}
