package component

// TTL removes an entity once Remaining seconds of simulation time have
// passed.
type TTL struct {
	Remaining float64
}

var TTLComponent = NewComponent[TTL]()
