// Package bus is the outbound transport of the notification pipeline: a
// thin HTTP client that posts assembled notification events to the event
// bus. The bundling engine treats it as a collaborator with a fixed
// contract; any retry policy is configured here and never inside the engine.
package bus
