// Package settings reads per-user notification preferences from the
// settings service and exposes them through a typed snapshot with
// default-valued accessors. Persistence of the settings themselves is owned
// by the settings service.
package settings
