// Package redis provides a Redis-backed checkpoint store.
//
// Checkpoints are stored as JSON values and indexed per thread in a sorted
// set scored by checkpoint version, so listing returns them in commit order.
// An optional TTL expires both the checkpoints and the thread index, which is
// useful for ephemeral conversations.
//
//	store := redis.NewRedisCheckpointStore(redis.RedisOptions{
//		Addr:   "localhost:6379",
//		Prefix: "flowgraph:",
//		TTL:    24 * time.Hour,
//	})
package redis
