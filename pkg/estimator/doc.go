// Package estimator evaluates expectation values of weighted Pauli-operator
// sums against parameterized circuits, using only the measurement-count
// histograms an execution backend returns.
//
// # Overview
//
// Work is submitted as pubs. A pub pairs one circuit with an array of
// operator sums, an array of parameter bindings, and an optional target
// precision:
//
//	sum := pauli.Sum{"ZZ": 1, "XX": 0.5}
//	pub := estimator.Pub{
//		Circuit:     bell,
//		Observables: estimator.Observable(sum),
//	}
//
// The bindings and observables arrays broadcast against each other with
// standard trailing-dimension alignment, so a single observable can be
// estimated over a sweep of parameter values (or vice versa) without
// repeating inputs. The result carries one expectation value and one
// standard error per broadcast index.
//
// For each distinct binding the estimator partitions the needed operators
// into qubit-wise commuting groups, measures each group through a single
// basis-change circuit, and recombines per-operator estimates into weighted
// sums. Grouping can be disabled through Options.AbelianGrouping, at the
// cost of one measurement circuit per operator.
//
// # Precision and shots
//
// The target precision resolves per pub: an explicit pub precision wins,
// then the run-level precision, then the configured default. The resolved
// precision implies shots = ceil(1 / precision^2), and pubs sharing a shot
// count are batched into the same backend submission.
//
// # Running
//
// Run validates every pub up front and returns an asynchronous Job:
//
//	est, err := estimator.New(sim.New(sim.Options{}), estimator.Options{})
//	if err != nil { ... }
//	job, err := est.Run([]estimator.Pub{pub}, 0)
//	if err != nil { ... }
//	result, err := job.Result(ctx)
//
// Failures before execution are validation errors; a register name clash
// with the estimator's measurement registers is a name-conflict error; a
// histogram that cannot be decoded into estimates is a computation error.
// The package-level Is helpers classify them.
package estimator
