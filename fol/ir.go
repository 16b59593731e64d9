package fol

import (
	"strconv"
)

// Dialect selects the serializer for a program.
type Dialect int

const (
	Mace4 Dialect = iota
	Prover9
)

func (d Dialect) String() string {
	switch d {
	case Mace4:
		return "mace4"
	case Prover9:
		return "prover9"
	default:
		return "unknown"
	}
}

// Atom is a predicate applied to constant or variable arguments.
type Atom struct {
	Pred    string
	Args    []string
	Negated bool
}

// NewAtom builds a positive atom.
func NewAtom(pred string, args ...string) Atom {
	return Atom{Pred: pred, Args: args}
}

// Not returns the negation of a.
func (a Atom) Not() Atom {
	a.Negated = !a.Negated
	return a
}

// Rule is a universally quantified implication: all Vars (Body -> Head).
type Rule struct {
	Vars []string
	Body []Atom
	Head Atom
}

// DirectiveKind is the LADR option command.
type DirectiveKind int

const (
	Assign DirectiveKind = iota
	Set
	Clear
)

// Directive is an option command such as assign(max_seconds, 30).
type Directive struct {
	Kind  DirectiveKind
	Name  string
	Value int
}

// Program is a complete input for one engine.
type Program struct {
	Dialect    Dialect
	Directives []Directive
	Facts      []Atom
	Rules      []Rule
	Goals      []Atom
}

// Builder accumulates a program in insertion order.
type Builder struct {
	p Program
}

// NewBuilder starts a program for the given dialect.
func NewBuilder(d Dialect) *Builder {
	return &Builder{p: Program{Dialect: d}}
}

func (b *Builder) Assign(name string, value int) *Builder {
	b.p.Directives = append(b.p.Directives, Directive{Kind: Assign, Name: name, Value: value})
	return b
}

func (b *Builder) Set(name string) *Builder {
	b.p.Directives = append(b.p.Directives, Directive{Kind: Set, Name: name})
	return b
}

func (b *Builder) Fact(a Atom) *Builder {
	b.p.Facts = append(b.p.Facts, a)
	return b
}

func (b *Builder) Rule(r Rule) *Builder {
	b.p.Rules = append(b.p.Rules, r)
	return b
}

func (b *Builder) Goal(a Atom) *Builder {
	b.p.Goals = append(b.p.Goals, a)
	return b
}

// Program returns a copy of the accumulated program.
func (b *Builder) Program() *Program {
	p := b.p
	p.Directives = append([]Directive(nil), b.p.Directives...)
	p.Facts = append([]Atom(nil), b.p.Facts...)
	p.Rules = append([]Rule(nil), b.p.Rules...)
	p.Goals = append([]Atom(nil), b.p.Goals...)
	return &p
}

// Directive returns the value of an assign directive.
func (p *Program) Directive(name string) (int, bool) {
	for _, d := range p.Directives {
		if d.Kind == Assign && d.Name == name {
			return d.Value, true
		}
	}
	return 0, false
}

// Text renders the program with the serializer of its dialect.
func (p *Program) Text() (string, error) {
	return SerializerFor(p.Dialect).Serialize(p)
}

func itoa(i int) string { return strconv.Itoa(i) }
