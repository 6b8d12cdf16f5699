package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component is a named dependency to check.
type Component struct {
	Name   string
	Pinger Pinger
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	components []Component
}

// New creates a Service. Components with a nil Pinger are skipped.
func New(components ...Component) *Service {
	out := make([]Component, 0, len(components))
	for _, c := range components {
		if c.Pinger != nil {
			out = append(out, c)
		}
	}
	return &Service{components: out}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	failed := 0

	for _, c := range s.components {
		if err := c.Pinger.Ping(ctx); err != nil {
			checks[c.Name] = CheckError
			failed++
		} else {
			checks[c.Name] = CheckOK
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(s.components):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
