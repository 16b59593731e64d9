package planner

import (
	"github.com/theoremus-urban-solutions/transit-fol-planner/prover"
)

// Request is one planning call.
type Request struct {
	From                 string `json:"start_stop" validate:"required"`
	To                   string `json:"end_stop" validate:"required"`
	PreferFewerTransfers bool   `json:"prefer_fewer_transfers"`
	SaveInputs           bool   `json:"save_inputs"`
	IncludeDirectRoutes  bool   `json:"include_direct_routes"`
}

// RouteSegment is one hop of the planned trip, named for display.
type RouteSegment struct {
	FromStop        string `json:"from_stop"`
	ToStop          string `json:"to_stop"`
	RouteName       string `json:"route_name"`
	RouteID         string `json:"route_id"`
	DurationMinutes int    `json:"duration_minutes"`
	Ticket          int    `json:"ticket"`
}

// DirectRoute is a stop-skipping hop asserted during verification.
type DirectRoute struct {
	FromStop string `json:"from_stop"`
	ToStop   string `json:"to_stop"`
}

// ProofRef points at one engine run and its persisted files.
type ProofRef struct {
	Verdict    prover.Verdict `json:"verdict"`
	InputFile  string         `json:"input_file,omitempty"`
	OutputFile string         `json:"output_file,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// TripResult is the self-contained answer to a Request.
type TripResult struct {
	Success              bool           `json:"success"`
	Route                []RouteSegment `json:"route"`
	DirectRoutes         []DirectRoute  `json:"direct_routes,omitempty"`
	TotalDurationMinutes int            `json:"total_duration_minutes"`
	TotalTransfers       int            `json:"total_transfers"`
	TotalCost            float64        `json:"total_cost"`
	Currency             string         `json:"currency"`
	TicketsNeeded        int            `json:"tickets_needed"`
	ProofMethod          string         `json:"proof_method"`
	Mace4Output          *ProofRef      `json:"mace4_output,omitempty"`
	Prover9Output        *ProofRef      `json:"prover9_output,omitempty"`
	Error                string         `json:"error,omitempty"`
}

func newProofRef(a *prover.ProofArtifact) *ProofRef {
	if a == nil {
		return nil
	}
	return &ProofRef{
		Verdict:    a.Verdict,
		InputFile:  a.InputFile,
		OutputFile: a.OutputFile,
		DurationMS: a.Duration.Milliseconds(),
	}
}
