// Package scheduler is the periodic-timer collaborator of the notification
// pipeline. It accumulates scheduled events per bundle period, persists them
// through a pluggable Storage (in-memory for tests, Redis for durability),
// and invokes the injected due-event callback on its own schedule.
//
// The bundling engine never owns timing or durability: it adds events here
// and receives due batches back through the callback, reporting per-batch
// outcomes via SetStatusFunc.
package scheduler
