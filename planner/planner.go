package planner

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fol-planner/fare"
	"github.com/theoremus-urban-solutions/transit-fol-planner/fol"
	"github.com/theoremus-urban-solutions/transit-fol-planner/graph"
	"github.com/theoremus-urban-solutions/transit-fol-planner/internal"
	"github.com/theoremus-urban-solutions/transit-fol-planner/pathfinder"
	"github.com/theoremus-urban-solutions/transit-fol-planner/prover"
)

// Verifier certifies candidate paths. *prover.Orchestrator implements it.
type Verifier interface {
	Verify(ctx context.Context, existence, derivation string, saveInputs bool) prover.Outcome
}

// Planner answers planning requests against the published graph.
type Planner struct {
	graphs   *graph.Store
	encoder  *fol.Encoder
	verifier Verifier
	fare     fare.Policy
	logger   *zap.Logger
	metrics  *internal.Metrics
}

// New returns a planner. logger and metrics may be nil.
func New(graphs *graph.Store, encoder *fol.Encoder, verifier Verifier, policy fare.Policy, logger *zap.Logger, metrics *internal.Metrics) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		graphs:   graphs,
		encoder:  encoder,
		verifier: verifier,
		fare:     policy,
		logger:   logger,
		metrics:  metrics,
	}
}

// Plan finds, verifies and prices a trip.
func (p *Planner) Plan(ctx context.Context, req Request) (*TripResult, error) {
	g, err := p.graphs.Current()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, outcome := p.plan(ctx, g, req)
	p.metrics.ObservePlan(outcome, time.Since(start))
	p.logger.Info("trip planned",
		zap.String("from", req.From),
		zap.String("to", req.To),
		zap.String("outcome", outcome),
		zap.String("method", res.ProofMethod),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

func (p *Planner) plan(ctx context.Context, g *graph.Graph, req Request) (*TripResult, string) {
	path, err := pathfinder.FindPath(g, req.From, req.To, pathfinder.Options{
		PreferFewerTransfers: req.PreferFewerTransfers,
		IncludeDirectRoutes:  req.IncludeDirectRoutes,
	})
	if err != nil {
		var notFound *pathfinder.NotFoundError
		if errors.As(err, &notFound) {
			return p.failure(err.Error()), "no_route"
		}
		return p.failure(err.Error()), "rejected"
	}

	enc, err := p.encoder.Encode(path, req.IncludeDirectRoutes)
	if err != nil {
		return p.failure("failed to encode path: " + err.Error()), "error"
	}
	existence, err := enc.Existence.Text()
	if err != nil {
		return p.failure("failed to encode existence program: " + err.Error()), "error"
	}
	derivation, err := enc.Derivation.Text()
	if err != nil {
		return p.failure("failed to encode derivation program: " + err.Error()), "error"
	}

	outcome := p.verifier.Verify(ctx, existence, derivation, req.SaveInputs)
	switch {
	case outcome.Cancelled:
		res := p.failure("verification cancelled")
		res.ProofMethod = outcome.Method
		return res, "cancelled"
	case !outcome.Valid:
		res := p.failure("no route found between the specified stops")
		res.ProofMethod = outcome.Method
		res.Mace4Output = newProofRef(outcome.Existence)
		return res, "disproved"
	}

	res := p.describe(g, path)
	res.ProofMethod = outcome.Method
	res.Mace4Output = newProofRef(outcome.Existence)
	res.Prover9Output = newProofRef(outcome.Derivation)
	return res, "success"
}

func (p *Planner) failure(msg string) *TripResult {
	return &TripResult{
		Success:     false,
		Route:       []RouteSegment{},
		Currency:    p.fare.Currency,
		ProofMethod: "none",
		Error:       msg,
	}
}

// describe copies the path into display form so the result does not share
// state with the graph. Consecutive segments on one route are reported and
// priced as a single leg.
func (p *Planner) describe(g *graph.Graph, path *pathfinder.CandidatePath) *TripResult {
	legs := path.Legs()
	minutes := make([]int, len(legs))
	for i, l := range legs {
		minutes[i] = l.Minutes
	}
	priced := p.fare.Breakdown(minutes)

	stopName := func(id string) string {
		if s, ok := g.Stop(id); ok && s.Name != "" {
			return s.Name
		}
		return id
	}

	res := &TripResult{
		Success:              true,
		Route:                make([]RouteSegment, len(legs)),
		TotalDurationMinutes: path.TotalMinutes(),
		TotalTransfers:       path.Transfers(),
		TotalCost:            priced.Cost,
		Currency:             p.fare.Currency,
		TicketsNeeded:        priced.Tickets,
	}
	for i, l := range legs {
		res.Route[i] = RouteSegment{
			FromStop:        stopName(l.From),
			ToStop:          stopName(l.To),
			RouteName:       l.RouteName,
			RouteID:         l.RouteID,
			DurationMinutes: l.Minutes,
			Ticket:          priced.TicketOf[i],
		}
	}
	// direct hops mirror the facts handed to the model finder
	for _, h := range path.DirectRoutes {
		res.DirectRoutes = append(res.DirectRoutes, DirectRoute{FromStop: stopName(h.From), ToStop: stopName(h.To)})
	}
	return res
}

// Stops lists the stops of the published graph in feed order.
func (p *Planner) Stops() ([]graph.Stop, error) {
	g, err := p.graphs.Current()
	if err != nil {
		return nil, err
	}
	return g.Stops(), nil
}

// Routes lists the routes of the published graph.
func (p *Planner) Routes() ([]graph.Route, error) {
	g, err := p.graphs.Current()
	if err != nil {
		return nil, err
	}
	return g.Routes(), nil
}

// Graph returns the published graph.
func (p *Planner) Graph() (*graph.Graph, error) {
	return p.graphs.Current()
}
