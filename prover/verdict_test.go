package prover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMace4(t *testing.T) {
	tests := []struct {
		name   string
		out    string
		code   int
		expect Verdict
	}{
		{"model found", "...\nExiting with 1 model.\n\nProcess 12 exit (max_models) Sun Mar 3\n", 0, Succeeded},
		{"legacy marker", "Model found", 0, Succeeded},
		{"exhausted", "Exiting with failure.\n\nProcess 12 exit (exhausted)\n", 2, Disproved},
		{"time limit no model", "Process 12 exit (max_sec_no)", 5, TimedOut},
		{"time limit with model", "Process 12 exit (max_sec_yes)", 4, Succeeded},
		{"memory limit no model", "Process 12 exit (max_megs_no)", 7, Inconclusive},
		{"exit code fallback", "", 2, Disproved},
		{"fatal exit code", "%%ERROR: syntax", 1, Errored},
		{"clean exit without markers", "garbage", 0, Errored},
		{"killed by signal", "", 101, Errored},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ClassifyMace4(tt.out, tt.code))
		})
	}
}

func TestClassifyProver9(t *testing.T) {
	tests := []struct {
		name   string
		out    string
		code   int
		expect Verdict
	}{
		{"proved", "============================== PROOF =====\nTHEOREM PROVED\n------ process 7 exit (max_proofs) ------", 0, Succeeded},
		{"sos empty", "SEARCH FAILED\n\nExiting with failure.\n\n------ process 7 exit (sos_empty) ------", 2, Disproved},
		{"time limit", "SEARCH FAILED\n\nExiting with failure.\n\n------ process 7 exit (max_seconds) ------", 4, TimedOut},
		{"weight limit", "SEARCH FAILED\n\nExiting with failure.\n\n------ process 7 exit (max_weight) ------", 5, Inconclusive},
		{"given limit", "SEARCH FAILED\n------ process 7 exit (max_given) ------", 5, Inconclusive},
		{"search failed without exit line", "SEARCH FAILED", 4, TimedOut},
		{"search failed code fallback", "SEARCH FAILED", 2, Disproved},
		{"memory code only", "", 3, Inconclusive},
		{"fatal", "Fatal error: sread_term", 1, Errored},
		{"no markers", "", 0, Errored},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ClassifyProver9(tt.out, tt.code))
		})
	}
}

func TestVerdictText(t *testing.T) {
	b, err := TimedOut.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "timed-out", string(b))
	assert.Equal(t, "errored", Verdict(42).String())
}
