// Package featureflags reads opt-in behavior switches from the
// environment. Flags gate behavior changes that alter API semantics, such
// as enforcing the offer status transition graph, so operators can roll
// them out without a deploy.
package featureflags

import (
	"os"
	"strings"
)

// StrictOfferTransitions rejects offer status updates that leave a
// terminal state. Off by default: historically any status could be
// overwritten, and some clients rely on that.
const StrictOfferTransitions = "strict_offer_transitions"

// Enabled reports whether the flag is set via FLAG_<NAME>, upper-cased.
// Accepted truthy values are 1, true, yes, and on (case-insensitive);
// anything else, including an unset variable, is off.
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
