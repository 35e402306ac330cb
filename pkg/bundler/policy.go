package bundler

import (
	"fmt"

	"github.com/dmitrymomot/notifykit/pkg/settings"
)

// DefaultBundlePeriod is used for non-messaging events when the user never
// set a bundling preference.
const DefaultBundlePeriod = "daily"

// Policy is the resolved bundling decision for one event.
type Policy struct {
	Bundle bool
	Period string
}

// ResolvePolicy decides whether an event is accumulated for periodic
// delivery or dispatched immediately.
//
// A user who never set the bundling switch gets daily bundling for ordinary
// events; messaging events (topic/post activity) never default into
// bundling. When bundling resolves enabled, the period must be one the
// scheduler recognizes; anything else is a configuration error fatal to this
// event, never silently dropped.
func ResolvePolicy(v settings.Values, serviceID string, isMessaging bool, knownPeriod func(string) bool) (Policy, error) {
	enabled, set := v.Bundling(serviceID)
	period := v.BundlePeriod(serviceID)

	if !set {
		if isMessaging {
			return Policy{}, nil
		}
		enabled = true
		if period == "" {
			period = DefaultBundlePeriod
		}
	}

	if !enabled {
		return Policy{}, nil
	}

	if !knownPeriod(period) {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownBundlePeriod, period)
	}
	return Policy{Bundle: true, Period: period}, nil
}
