package control

import (
	"context"
	"fmt"
	"strings"

	"github.com/oshokin/bedtime/internal/domain/schedule"
	"github.com/oshokin/bedtime/internal/logger"
)

// Commands understood by the daemon.
const (
	CommandStatus = "status"
	CommandStop   = "stop"
	CommandReset  = "reset"
	CommandTest   = "test"
)

// Responses written back to clients.
const (
	ResponseStopping       = "Ending daemon..."
	ResponseReset          = "Reset variables."
	ResponseTest           = "Test sequence complete."
	ResponseInvalidCommand = "Error: Invalid command."
	ResponseResetFailed    = "Error: Reset failed."
	responseAsleep         = "\nStatus: ASLEEP\nTime for bed."
	responseAwakeFormat    = "\nStatus: AWAKE\nTime Left: %s\n"
)

// Service abstracts the daemon operations the control channel depends on.
type Service interface {
	// Status evaluates the window at the current time.
	Status(ctx context.Context) schedule.Evaluation
	// Reset forces the triggered flag to false.
	Reset(ctx context.Context) error
	// Test dry-runs the bed time sequence.
	Test(ctx context.Context)
}

// FormatStatus renders an evaluation as the status response.
func FormatStatus(ev schedule.Evaluation) string {
	if ev.Asleep() {
		return responseAsleep
	}

	return fmt.Sprintf(responseAwakeFormat, schedule.FormatRemaining(ev.UntilBed))
}

// Dispatch answers a single command line. stop is true when the daemon must
// shut down after the response is written.
func Dispatch(ctx context.Context, svc Service, line string) (response string, stop bool) {
	command := strings.TrimSpace(line)

	switch command {
	case CommandStatus:
		return FormatStatus(svc.Status(ctx)), false
	case CommandStop:
		return ResponseStopping, true
	case CommandReset:
		if err := svc.Reset(ctx); err != nil {
			logger.ErrorKV(ctx, "Reset failed", "error", err)

			return ResponseResetFailed, false
		}

		return ResponseReset, false
	case CommandTest:
		svc.Test(ctx)

		return ResponseTest, false
	default:
		logger.WarnKV(ctx, "Invalid command", "command", command)

		return ResponseInvalidCommand, false
	}
}
