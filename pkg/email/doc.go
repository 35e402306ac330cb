// Package email provides direct email delivery for the notification
// pipeline: a Postmark-backed sender for production and a disk-writing dev
// sender for local development. The primary outbound path is the event bus
// (pkg/bus); direct delivery is an alternative wiring selected in the
// service binary.
package email
