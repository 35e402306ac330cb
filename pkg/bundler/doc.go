// Package bundler classifies inbound notification events, decides between
// immediate and bundled delivery from per-user settings, and assembles the
// outbound email payloads.
//
// The Engine is the entry point: HandleMessage consumes one inbound event
// and either posts an email payload to the bus right away or registers the
// event with a scheduler; ProcessDue later turns due scheduled events into
// one aggregated payload per user.
//
// Classification is table-driven. A GroupTable maps event types to bundle
// groups, each with a placeholder-bearing section title and an optional
// sub-grouping field. Groups can be declared in YAML via LoadGroups or
// taken from DefaultGroups.
//
// Usage:
//
//	groups, err := bundler.NewGroupTable(bundler.DefaultGroups())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	engine, err := bundler.New(cfg, groups, settingsClient, directoryClient, busClient, sched,
//		bundler.WithLogger(log),
//		bundler.WithMarkdown(markdown.New()),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	consumer.Run(ctx, engine.HandleMessage)
package bundler
