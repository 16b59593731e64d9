package prover

import (
	"strings"
)

// Verdict classifies one engine run.
type Verdict int

const (
	Errored Verdict = iota
	Succeeded
	Disproved
	Inconclusive
	TimedOut
)

func (v Verdict) String() string {
	switch v {
	case Succeeded:
		return "succeeded"
	case Disproved:
		return "disproved"
	case Inconclusive:
		return "inconclusive"
	case TimedOut:
		return "timed-out"
	default:
		return "errored"
	}
}

// MarshalText lets verdicts appear as strings in JSON.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

type marker struct {
	text    string
	verdict Verdict
}

// Classifier maps engine output and exit status to a verdict.
type Classifier func(stdout string, exitCode int) Verdict

// Checked in order; the first marker found wins.
var mace4Markers = []marker{
	{"Exiting with 1 model", Succeeded},
	{"Model found", Succeeded},
	{"exit (max_models)", Succeeded},
	{"exit (all_models)", Succeeded},
	{"exit (max_sec_yes)", Succeeded},
	{"exit (max_megs_yes)", Succeeded},
	{"exit (exhausted)", Disproved},
	{"exit (max_sec_no)", TimedOut},
	{"exit (max_seconds)", TimedOut},
	{"exit (max_megs_no)", Inconclusive},
	{"exit (fatal_error)", Errored},
}

// mace4 exit codes (LADR apps.src/mace4.c)
var mace4Codes = map[int]Verdict{
	1: Errored,
	2: Disproved,
	3: Succeeded,
	4: Succeeded,
	5: TimedOut,
	6: Succeeded,
	7: Inconclusive,
}

// prover9 prints SEARCH FAILED on every non-proof exit, so only the process
// exit reason tells an empty sos apart from a hit limit.
var prover9Markers = []marker{
	{"THEOREM PROVED", Succeeded},
	{"exit (sos_empty)", Disproved},
	{"exit (max_seconds)", TimedOut},
	{"exit (max_weight)", Inconclusive},
	{"exit (max_given)", Inconclusive},
	{"exit (max_kept)", Inconclusive},
	{"exit (max_megs)", Inconclusive},
	{"exit (action)", Inconclusive},
	{"exit (fatal_error)", Errored},
}

var prover9Codes = map[int]Verdict{
	1: Errored,
	2: Disproved,
	3: Inconclusive,
	4: TimedOut,
	5: Inconclusive,
	6: Inconclusive,
	7: Inconclusive,
}

// ClassifyMace4 interprets model finder output.
func ClassifyMace4(stdout string, exitCode int) Verdict {
	return classify(stdout, exitCode, mace4Markers, mace4Codes)
}

// ClassifyProver9 interprets theorem prover output.
func ClassifyProver9(stdout string, exitCode int) Verdict {
	return classify(stdout, exitCode, prover9Markers, prover9Codes)
}

// classify prefers textual markers and falls back to the exit code.
// A clean exit without any marker means the output is not what we expect.
func classify(stdout string, exitCode int, markers []marker, codes map[int]Verdict) Verdict {
	for _, m := range markers {
		if strings.Contains(stdout, m.text) {
			return m.verdict
		}
	}
	if v, ok := codes[exitCode]; ok {
		return v
	}
	return Errored
}
