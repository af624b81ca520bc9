// Package harness runs conformance scenarios against the modeling session.
//
// A scenario declares a model in CUE, drives a session through a flow of
// statements, and asserts on the resulting statement log. Each run uses a
// fresh in-memory store, a fixed session ID and a deterministic clock, so
// the rendered program is reproducible and can be compared against a
// golden file.
//
// # Scenario Format
//
//	name: transport
//	description: "Classic transportation model"
//	model: transport.cue        # path relative to the scenario file
//	flow:
//	  - define:
//	      equation: supply
//	      relation: leq
//	      lhs: {sum: {over: [j], of: {ref: x}}}
//	      rhs: {ref: a}
//	  - assign:
//	      lhs: {ref: cd}
//	      rhs: {matmul: [{ref: c}, {ref: d}]}
//	  - raw: "Model transport / all /"
//	assertions:
//	  - type: contains
//	    text: "Alias(i,AliasOfi_2);"
//	  - type: order
//	    texts: ["Alias(i,AliasOfi_2);", "cd(AliasOfi_2,i) ="]
//	  - type: kind_count
//	    kind: definition
//	    count: 1
//
// Instead of a model file, a scenario may carry CUE source inline under
// source. An optional config names a YAML or TOML file whose codegen
// settings the session renders with.
//
// # Terms
//
// Flow expressions are written as terms. Exactly one field of a term is
// set:
//
//	ref: c(i,j)                 # symbol reference; bare name uses declared domain
//	number: 2.5
//	add|sub|mul|div: [t1, t2]   # left-associative for more than two terms
//	gt|lt: [t1, t2]
//	neg: t
//	sum|prod|smin|smax: {over: [i, j], of: t}
//	sum: {over: [i], where: c, of: t}   # sum(i $ (c),t)
//	where: {of: t, cond: c}             # t $ (c)
//	matmul: [t1, t2]            # contraction, aliasing colliding outputs
//
// A bare assignment target takes the free indices of its right-hand side
// when their count matches the target's dimension.
//
// # Assertions
//
//   - contains: some statement contains text
//   - order: the first statements containing each of texts appear in order
//   - statement_count: the log holds exactly count statements
//   - kind_count: the log holds exactly count statements of kind
//   - declared: each of symbols has a declaration statement
package harness
