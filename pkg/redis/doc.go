// Package redis connects to a Redis server with retry and exposes a
// healthcheck probe. It wraps the go-redis client; the scheduler's durable
// event storage builds on the returned client.
//
// Usage:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
package redis
