// Package prover runs the LADR reasoning engines as supervised subprocesses.
//
// Each run gets the program on stdin, a hard wall-clock deadline and a
// reaped child process, and comes back as a tagged Verdict instead of an
// error. The Orchestrator sequences the model finder and the theorem prover
// for one plan, bounds how many engines run at once across all plans, and
// isolates a misbehaving engine binary behind a circuit breaker.
package prover
