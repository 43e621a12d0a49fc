package rdx

import (
	"log"
	"os"
	"time"

	"mjolnir/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

// Connect dials Redis. Cache helpers degrade to misses when Redis is
// unreachable, so the store keeps serving without it.
func Connect() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err := Conn.Ping(globals.Ctx).Err(); err != nil {
		return err
	}
	return nil
}

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxSet(key, value string, ttl time.Duration) error {
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}

func RdxDel(key string) error {
	return Conn.Del(globals.Ctx, key).Err()
}

// Publish nudges subscribers on a channel. Failures are logged, never
// propagated; the durable state lives in MongoDB.
func Publish(channel, payload string) {
	if Conn == nil {
		return
	}
	if err := Conn.Publish(globals.Ctx, channel, payload).Err(); err != nil {
		log.Println("Redis publish error:", err)
	}
}
