package domain

// HealthStatus grades one `ytgenius doctor` check.
type HealthStatus string

// A warn check leaves generation usable; an error check means requests or
// history writes will fail until it is fixed.
const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// HealthCheck is one line of the doctor output: config, session, history
// backend or service reachability.
type HealthCheck struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Details string       `json:"details"`
}

// HealthReport lists checks in the order they ran.
type HealthReport struct {
	Checks []HealthCheck `json:"checks"`
}

// Failed returns the checks graded HealthError.
func (r HealthReport) Failed() []HealthCheck {
	var failed []HealthCheck
	for _, check := range r.Checks {
		if check.Status == HealthError {
			failed = append(failed, check)
		}
	}
	return failed
}
