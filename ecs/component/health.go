package component

// Health is the hit point pool consumed by damage commands.
type Health struct {
	Max    float64
	Value  float64
	Killed bool
}

var HealthComponent = NewComponent[Health]()

// NewHealth creates a full Health component.
func NewHealth(max float64) Health {
	if max <= 0 {
		max = 1
	}
	return Health{Max: max, Value: max}
}

// IsAlive reports whether any health remains.
func (h *Health) IsAlive() bool {
	return h != nil && h.Value > 0
}
