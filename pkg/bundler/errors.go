package bundler

import "errors"

var (
	// ErrNoGroups is returned when a group table is built from an empty list.
	ErrNoGroups = errors.New("bundler.errors.no_groups")

	// ErrInvalidGroup is returned for malformed or overlapping group definitions.
	ErrInvalidGroup = errors.New("bundler.errors.invalid_group")

	// ErrUnknownBundlePeriod is returned when settings enable bundling with a
	// period the scheduler does not recognize. Fatal for that event.
	ErrUnknownBundlePeriod = errors.New("bundler.errors.unknown_bundle_period")
)
