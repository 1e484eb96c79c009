package application

import (
	"errors"
	"fmt"

	"espresso-log/internal/domain"
)

// Fixed user-facing strings per fault kind. Everything returned to the
// caller goes through here; internals never leak into the message.
const (
	msgConnectivity  = "I couldn't reach the assistant service. Check your connection and try again."
	msgConfiguration = "Voice commands need an API key. Add one in settings to get started."
	msgRateLimited   = "The assistant is a bit overloaded right now. Wait a moment and try again."
	msgCancelled     = "Cancelled."
	msgUnknown       = "Sorry, something went wrong handling that command."
)

// UserMessage maps any pipeline failure to a literal, user-safe string.
// Validation faults carry their own corrective sentence, written as
// user-facing text where the fault is raised.
func UserMessage(err error) string {
	switch domain.KindOf(err) {
	case domain.FaultValidation:
		var f *domain.Fault
		if errors.As(err, &f) && f.Err != nil {
			return f.Err.Error()
		}
		return msgUnknown
	case domain.FaultNotFound:
		if name := domain.NameOf(err); name != "" {
			return fmt.Sprintf("I couldn't find anything named %q. Try again with the exact name.", name)
		}
		return "I couldn't find what that command referred to."
	case domain.FaultConnectivity:
		return msgConnectivity
	case domain.FaultConfiguration:
		return msgConfiguration
	case domain.FaultRateLimited:
		return msgRateLimited
	case domain.FaultCancelled:
		return msgCancelled
	default:
		return msgUnknown
	}
}
