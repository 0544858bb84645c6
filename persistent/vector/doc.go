/*
Package vector implements an immutable persistent vector, designed for use-cases
similar to Go slices.

An immutable persistent vector has copy-on-write behaviour: Each “modification” of the vector
(appending or replacement) creates a copy, leaving the original unmodified.
Under the hood, copy-on-write retains most of the memory held by the original, and creates
a new incarnation of the path from the root to the modified leaf only. Thus, most of the
structure/memory is shared between original and copy, transparently to clients.

The layout follows the well-known bit-partitioned trie of Clojure's PersistentVector:
values live in leaf buckets of 2^bits entries, inner nodes hold 2^bits children, and
the right-most bucket is kept outside of the trie as a tail to make appending cheap.

Immutable vectors are inherently concurrency-safe.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package vector

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'statenet.vector'.
func tracer() tracing.Trace {
	return tracing.Select("statenet.vector")
}
