// Package fol turns a candidate path into first-order logic programs for
// the LADR tools.
//
// Programs are built as an explicit intermediate form (directives, facts,
// rules, goals) and rendered by one serializer per dialect:
//
//   - Existence programs go to the Mace4 model finder. They assert the path's
//     connectivity and the reachability of its destination and carry no rules.
//   - Derivation programs go to the Prover9 theorem prover. They add a
//     successor chain, the starting step, the route used at every step and a
//     single inference rule, with the goal step(N, destination).
//
// Stop identifiers are compacted to dense integers first (see Remap), which
// keeps Mace4 domains small and output independent of feed id magnitudes.
package fol
