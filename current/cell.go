/*
Package current holds "the current network" for applications which need a single
authoritative version of their settings, e.g. the settings last pushed to hardware.

A Cell is owned by the application and passed around explicitly. It publishes new
networks with compare-and-swap: a commit derived from an outdated version never
overwrites a newer one. Update re-runs the caller's staging function on the newer
version instead; there is no merging of diverged branches.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package current

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/statenet"
)

// tracer traces with key 'statenet.current'.
func tracer() tracing.Trace {
	return tracing.Select("statenet.current")
}

// ErrContention is returned by Update if other updates keep winning the race
// for publishing.
var ErrContention = errors.New("too many concurrent updates")

// ErrForeignNetwork is returned if a staging function returns a network of a
// different topology than the one it was handed.
var ErrForeignNetwork = errors.New("network of foreign topology")

const defaultMaxAttempts = 16

// Snapshot is a published network together with its version number.
// Versions start at 0 and grow by one with every publication.
type Snapshot struct {
	Network statenet.Network
	Version uint64
}

// Cell holds the current network. Cells are safe for concurrent use.
type Cell struct {
	snapshot    atomic.Pointer[Snapshot]
	maxAttempts int
}

// Option configures a cell.
type Option func(*Cell)

// MaxAttempts sets how often Update tries to publish before giving up with
// ErrContention; default is 16.
func MaxAttempts(n int) Option {
	return func(c *Cell) {
		c.maxAttempts = max(1, n)
	}
}

// New creates a cell holding n as version 0.
func New(n statenet.Network, opts ...Option) *Cell {
	c := &Cell{maxAttempts: defaultMaxAttempts}
	for _, option := range opts {
		option(c)
	}
	c.snapshot.Store(&Snapshot{Network: n})
	return c
}

// Load returns the current snapshot.
func (c *Cell) Load() *Snapshot {
	return c.snapshot.Load()
}

// Network returns the current network.
func (c *Cell) Network() statenet.Network {
	return c.snapshot.Load().Network
}

// CompareAndSwap publishes n if old is still the current snapshot.
func (c *Cell) CompareAndSwap(old *Snapshot, n statenet.Network) bool {
	next := &Snapshot{Network: n, Version: old.Version + 1}
	return c.snapshot.CompareAndSwap(old, next)
}

// Update stages changes on the current network with stage, commits them, and
// publishes the result. It returns the committed network and the nodes whose value
// changed, which is what a driver needs to apply the new settings.
//
// If another update is published in the meantime, stage is called again with the
// newer network. stage therefore has to be free of side effects. A commit without
// changes is not published.
func (c *Cell) Update(stage func(statenet.Network) (statenet.Network, error)) (statenet.Network, statenet.NodeSet, error) {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		old := c.Load()
		staged, err := stage(old.Network)
		if err != nil {
			return old.Network, nil, err
		}
		if !staged.SameTopology(old.Network) {
			return old.Network, nil, fmt.Errorf("current: %w", ErrForeignNetwork)
		}
		next, changed, err := staged.Commit()
		if err != nil {
			return old.Network, nil, err
		}
		if changed.Len() == 0 {
			return next, nil, nil
		}
		if c.CompareAndSwap(old, next) {
			tracer().Debugf("published version %d, %d nodes changed", old.Version+1, changed.Len())
			return next, changed, nil
		}
		tracer().Debugf("lost race for publishing version %d, attempt %d", old.Version+1, attempt)
	}
	return c.Network(), nil, fmt.Errorf("current: %w after %d attempts", ErrContention, c.maxAttempts)
}
