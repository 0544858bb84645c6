package statenet

// config holds the tuning parameters of the persistent structures of a network.
type config struct {
	storeBits     int // branching of the value store is 2^storeBits
	overlayDegree int // B-tree degree of the overlay of staged values
}

var defaultConfig = config{
	storeBits:     5,
	overlayDegree: 4,
}

// Option configures a builder.
type Option func(*config)

// StoreDegree sets the branching factor of the value store to 2^exp. Accepted
// exponents are [1…5], default is 5. Smaller values make commits copy less and lookups
// traverse more levels.
func StoreDegree(exp int) Option {
	return func(c *config) {
		c.storeBits = exp
	}
}

// OverlayDegree sets the B-tree degree of the overlay of staged values; the lower
// bound is 2, default is 4.
func OverlayDegree(n int) Option {
	return func(c *config) {
		c.overlayDegree = n
	}
}
