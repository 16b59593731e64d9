package fol

import (
	"sort"
	"strconv"

	"github.com/theoremus-urban-solutions/transit-fol-planner/pathfinder"
)

// Budget bounds the Prover9 search of a derivation program.
// max_proofs is always 1.
type Budget struct {
	MaxWeight  int `yaml:"maxWeight" validate:"gt=0"`
	MaxSeconds int `yaml:"maxSeconds" validate:"gt=0"`
	SOSLimit   int `yaml:"sosLimit" validate:"gt=0"`
}

// DefaultBudget returns the limits used when none are configured.
func DefaultBudget() Budget {
	return Budget{MaxWeight: 30, MaxSeconds: 30, SOSLimit: 500}
}

// ExistenceOptions tunes the Mace4 program.
type ExistenceOptions struct {
	IncludeDirectRoutes bool
	// MaxSeconds adds assign(max_seconds, n) when positive.
	MaxSeconds int
}

// Encoding holds both programs generated for one path.
type Encoding struct {
	Existence  *Program
	Derivation *Program
	Mapping    *NodeMapping
}

// Encoder generates the two programs for a path.
type Encoder struct {
	Budget    Budget
	Existence ExistenceOptions
}

// NewEncoder returns an encoder with the given derivation budget.
func NewEncoder(b Budget) *Encoder {
	return &Encoder{Budget: b}
}

// Encode compacts the path and builds both programs from the same mapping.
func (e *Encoder) Encode(p *pathfinder.CandidatePath, includeDirect bool) (*Encoding, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	compact, mapping := Remap(p)
	opts := e.Existence
	opts.IncludeDirectRoutes = includeDirect
	return &Encoding{
		Existence:  existence(compact, mapping, opts),
		Derivation: derivation(compact, e.Budget),
		Mapping:    mapping,
	}, nil
}

// Existence builds the Mace4 program for a path.
func Existence(p *pathfinder.CandidatePath, opts ExistenceOptions) (*Program, *NodeMapping, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	compact, mapping := Remap(p)
	return existence(compact, mapping, opts), mapping, nil
}

// Derivation builds the Prover9 program for a path.
func Derivation(p *pathfinder.CandidatePath, b Budget) (*Program, *NodeMapping, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	compact, mapping := Remap(p)
	return derivation(compact, b), mapping, nil
}

func existence(p *pathfinder.CandidatePath, m *NodeMapping, opts ExistenceOptions) *Program {
	size := m.Len()
	if size < 2 {
		size = 2
	}
	b := NewBuilder(Mace4).Assign("start_size", size).Assign("end_size", size)
	if opts.MaxSeconds > 0 {
		b.Assign("max_seconds", opts.MaxSeconds)
	}

	for _, s := range p.Segments {
		b.Fact(NewAtom("connected", s.From, s.To, s.RouteID))
	}
	if opts.IncludeDirectRoutes {
		for _, h := range p.DirectRoutes {
			b.Fact(NewAtom("connected", h.From, h.To, DirectRoute))
		}
	}

	stops := map[string]bool{}
	for _, s := range p.Segments {
		stops[s.From] = true
		stops[s.To] = true
	}
	ordered := make([]int, 0, len(stops))
	for tok := range stops {
		n, _ := strconv.Atoi(tok)
		ordered = append(ordered, n)
	}
	sort.Ints(ordered)
	for _, n := range ordered {
		b.Fact(NewAtom("reachable", itoa(n)))
	}
	b.Fact(NewAtom("reachable", p.Destination()))
	return b.Program()
}

func derivation(p *pathfinder.CandidatePath, budget Budget) *Program {
	b := NewBuilder(Prover9).
		Assign("max_weight", budget.MaxWeight).
		Assign("max_proofs", 1).
		Assign("max_seconds", budget.MaxSeconds).
		Assign("sos_limit", budget.SOSLimit)

	for _, s := range p.Segments {
		b.Fact(NewAtom("connected", s.From, s.To, s.RouteID))
	}
	n := len(p.Segments)
	for i := 0; i < n; i++ {
		b.Fact(NewAtom("succ", itoa(i), itoa(i+1)))
	}
	b.Fact(NewAtom("step", "0", p.Origin()))
	for i, s := range p.Segments {
		b.Fact(NewAtom("uses", itoa(i+1), s.RouteID))
	}
	b.Rule(Rule{
		Vars: []string{"N", "M", "X", "Y", "R"},
		Body: []Atom{
			NewAtom("step", "N", "X"),
			NewAtom("succ", "N", "M"),
			NewAtom("uses", "M", "R"),
			NewAtom("connected", "X", "Y", "R"),
		},
		Head: NewAtom("step", "M", "Y"),
	})
	b.Goal(NewAtom("step", itoa(n), p.Destination()))
	return b.Program()
}
