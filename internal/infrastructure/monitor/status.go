package monitor

import "time"

// ServiceStatus is the outcome of the latest probe for one dependency.
type ServiceStatus struct {
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type Status struct {
	Services  map[string]ServiceStatus `json:"services"`
	LastCheck time.Time                `json:"last_check"`
}

// Healthy reports whether every probed service passed. A monitor that has
// not run yet is not healthy.
func (s Status) Healthy() bool {
	if len(s.Services) == 0 {
		return false
	}
	for _, svc := range s.Services {
		if !svc.Healthy {
			return false
		}
	}
	return true
}
