/*
Package persistent is the home of the immutable persistent data structures
statenet is built on. The package itself holds no code; see its sub-packages:

	persistent/vector   copy-on-write vector, indexed by position
	persistent/btree    copy-on-write ordered map

Every "modification" of one of these structures returns a new incarnation and
leaves the original untouched. New incarnations share all unmodified nodes
with their predecessors (structural sharing), so keeping many versions around
costs little more than keeping one. This is what lets a network of settings
hand out a fresh, independent version for every staged change without
copying the values of all its nodes.

Immutable structures are safe for concurrent reads without locking.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package persistent
