package settings

// Values is a read-only snapshot of a user's notification settings, fetched
// per event and never cached. The nested maps come straight off the wire;
// the accessor methods collapse the optional paths into explicit,
// default-valued resolvers so callers never chase missing keys themselves.
type Values struct {
	Notifications map[string]NotificationSetting `json:"notifications"`
	Services      map[string]ServiceSetting      `json:"services"`
}

// NotificationSetting is the per-notification-type switch.
type NotificationSetting struct {
	Enabled string `json:"enabled"` // "yes", "no", or empty when unset
}

// ServiceSetting is the per-delivery-service bundling preference.
type ServiceSetting struct {
	BundlingEnabled string `json:"bundlingEnabled"` // "yes", "no", or empty when unset
	BundlePeriod    string `json:"bundlePeriod"`
}

// NotificationEnabled reports whether the given notification type is enabled
// for the user. Unset means enabled; users opt out explicitly.
func (v Values) NotificationEnabled(notifType string) bool {
	s, ok := v.Notifications[notifType]
	if !ok || s.Enabled == "" {
		return true
	}
	return s.Enabled == "yes"
}

// Bundling resolves the bundling switch for a delivery service.
// The second result reports whether the user set the switch at all, which
// the policy resolver needs to apply per-event defaults.
func (v Values) Bundling(serviceID string) (enabled bool, set bool) {
	s, ok := v.Services[serviceID]
	if !ok || s.BundlingEnabled == "" {
		return false, false
	}
	return s.BundlingEnabled == "yes", true
}

// BundlePeriod returns the user's bundle period for a delivery service, or
// empty when unset.
func (v Values) BundlePeriod(serviceID string) string {
	return v.Services[serviceID].BundlePeriod
}
