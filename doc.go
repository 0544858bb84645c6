/*
Package statenet manages a network of interdependent settings (input nodes) and
derived values (calculation nodes), where applying a new configuration is expensive
and therefore has to be staged, validated and applied atomically.

A network is assembled once with a Builder:

	b := statenet.NewBuilder()
	val1, _ := b.AddInput(1, statenet.WithName("val1"))
	val2, _ := b.AddInput(2, statenet.WithName("val2"))
	result, _ := b.AddCalculation(statenet.Sum[int](), []statenet.NodeID{val1, val2})
	network, err := b.Build()

Networks are immutable values. Staging a change returns a new network and never
recomputes anything; committing returns yet another network together with the set
of nodes whose value actually changed:

	staged, _ := network.ChangeValue(val1, 2)
	staged.IsConsistent()                     // false: val1 differs from its baseline
	next, changed, err := staged.Commit()     // changed = {val1, result}
	v, _ := next.Value(result)               // 4

All versions derived from one builder share the topology, and every new version of
the committed values shares all unchanged entries with its predecessor. Any number
of goroutines may read, stage and commit on networks concurrently; reconciling two
committed branches is left to the caller (see package current).

Calculation nodes may only depend on nodes created before them. Creation order is
therefore always a valid topological order, and dependency cycles cannot be
expressed at all.

Calculation functions are expected to be pure. A network re-evaluates them whenever
one of their (transitive) dependencies changes, and discards their results if any
calculation of a commit fails.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package statenet

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'statenet'.
func tracer() tracing.Trace {
	return tracing.Select("statenet")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("statenet: "+msg, msgargs...)
		panic(msg)
	}
}
