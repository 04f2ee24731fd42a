package i

import "time"

// Metrics records pipeline measurements.
type Metrics interface {
	// ObserveProve records one proving session of program.
	ObserveProve(program, profile string, elapsed time.Duration, err error)

	// ObserveVerdict records the verdict of a path verification.
	ObserveVerdict(valid bool)
}
