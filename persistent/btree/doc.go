/*
Package btree implements a persistent (immutable) in-memory version of B-trees,
usable as an ordered map.

Every insertion copies the nodes on the path from the root to the affected leaf
(copy-on-write) and shares everything else with the previous incarnation of
the tree. Iteration is in ascending key order.

A good introduction to B-trees and their algorithms may be found at
https://algorithmtutor.com/Data-Structures/Tree/B-Trees/.
*/
package btree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'statenet.btree'.
func tracer() tracing.Trace {
	return tracing.Select("statenet.btree")
}
