package fol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownOption is returned for a directive the target engine does not accept.
	ErrUnknownOption = errors.New("fol: option not supported by dialect")
	// ErrDomainTooSmall is returned when a Mace4 program names an integer
	// constant outside its search domain.
	ErrDomainTooSmall = errors.New("fol: integer constant outside mace4 domain")
)

// Serializer renders a program as LADR input text.
type Serializer interface {
	Serialize(p *Program) (string, error)
}

// SerializerFor returns the serializer of a dialect.
func SerializerFor(d Dialect) Serializer {
	if d == Prover9 {
		return prover9Serializer{}
	}
	return mace4Serializer{}
}

var mace4Options = map[string]bool{
	"start_size": true, "end_size": true, "max_models": true,
	"max_seconds": true, "max_megs": true, "domain_size": true,
}

var prover9Options = map[string]bool{
	"max_weight": true, "max_proofs": true, "max_seconds": true,
	"sos_limit": true, "max_given": true, "max_kept": true, "max_megs": true,
}

type mace4Serializer struct{}

func (mace4Serializer) Serialize(p *Program) (string, error) {
	if err := checkOptions(p, mace4Options); err != nil {
		return "", err
	}
	if size, ok := p.Directive("start_size"); ok {
		if n := maxIntConstant(p); n >= size {
			return "", fmt.Errorf("%w: constant %d with start_size %d", ErrDomainTooSmall, n, size)
		}
	}
	return render(p), nil
}

type prover9Serializer struct{}

func (prover9Serializer) Serialize(p *Program) (string, error) {
	if err := checkOptions(p, prover9Options); err != nil {
		return "", err
	}
	return render(p), nil
}

func checkOptions(p *Program, allowed map[string]bool) error {
	for _, d := range p.Directives {
		if !allowed[d.Name] {
			return fmt.Errorf("%w: %s %s", ErrUnknownOption, p.Dialect, d.Name)
		}
	}
	return nil
}

func render(p *Program) string {
	var sb strings.Builder
	for _, d := range p.Directives {
		switch d.Kind {
		case Assign:
			fmt.Fprintf(&sb, "assign(%s, %d).\n", d.Name, d.Value)
		case Set:
			fmt.Fprintf(&sb, "set(%s).\n", d.Name)
		case Clear:
			fmt.Fprintf(&sb, "clear(%s).\n", d.Name)
		}
	}
	if len(p.Directives) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("formulas(assumptions).\n")
	for _, a := range p.Facts {
		sb.WriteString(formatAtom(a))
		sb.WriteString(".\n")
	}
	for _, r := range p.Rules {
		sb.WriteString(formatRule(r))
		sb.WriteString(".\n")
	}
	sb.WriteString("end_of_list.\n")

	if len(p.Goals) > 0 {
		sb.WriteString("\nformulas(goals).\n")
		for _, a := range p.Goals {
			sb.WriteString(formatAtom(a))
			sb.WriteString(".\n")
		}
		sb.WriteString("end_of_list.\n")
	}
	return sb.String()
}

func formatAtom(a Atom) string {
	s := a.Pred
	if len(a.Args) > 0 {
		s += "(" + strings.Join(a.Args, ",") + ")"
	}
	if a.Negated {
		return "-" + s
	}
	return s
}

func formatRule(r Rule) string {
	var sb strings.Builder
	for _, v := range r.Vars {
		sb.WriteString("all ")
		sb.WriteString(v)
		sb.WriteString(" ")
	}
	sb.WriteString("(")
	for i, a := range r.Body {
		if i > 0 {
			sb.WriteString(" & ")
		}
		sb.WriteString(formatAtom(a))
	}
	sb.WriteString(" -> ")
	sb.WriteString(formatAtom(r.Head))
	sb.WriteString(")")
	return sb.String()
}

// maxIntConstant returns the largest natural-number argument, or -1.
func maxIntConstant(p *Program) int {
	max := -1
	scan := func(atoms []Atom) {
		for _, a := range atoms {
			for _, arg := range a.Args {
				if n, err := strconv.Atoi(arg); err == nil && n > max {
					max = n
				}
			}
		}
	}
	scan(p.Facts)
	scan(p.Goals)
	for _, r := range p.Rules {
		scan(r.Body)
		scan([]Atom{r.Head})
	}
	return max
}
