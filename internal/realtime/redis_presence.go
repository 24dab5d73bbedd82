package realtime

import (
	"context"
	"fmt"
	"sort"
	"time"

	"dukan/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout   = 5 * time.Second
	onlineKey     = "presence:online"
	userKeyPrefix = "presence:user:"

	// PresenceTTL bounds how long a connection stays listed once its node
	// stops refreshing it.
	PresenceTTL = 90 * time.Second
)

// unregisterScript drops a connection and, when it was the user's last one,
// the user from the online set.
var unregisterScript = redis.NewScript(`
redis.call("SREM", KEYS[1], ARGV[1])
if redis.call("SCARD", KEYS[1]) == 0 then
	redis.call("SREM", KEYS[2], ARGV[2])
end
return 0
`)

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(dialCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis (ping failed): %w", err)
	}
	return client, nil
}

// RedisPresence shares presence between instances. Each user has a set of
// connection ids; presence:online is the set of users with at least one.
type RedisPresence struct {
	client *redis.Client
}

func NewRedisPresence(client *redis.Client) *RedisPresence {
	return &RedisPresence{client: client}
}

func userKey(userID string) string { return userKeyPrefix + userID }

// Register adds connID and renews the expiry of both keys. Calling it again
// for a live connection acts as a heartbeat.
func (p *RedisPresence) Register(ctx context.Context, userID, connID string) error {
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, userKey(userID), connID)
		pipe.Expire(ctx, userKey(userID), PresenceTTL)
		pipe.SAdd(ctx, onlineKey, userID)
		pipe.Expire(ctx, onlineKey, PresenceTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to register presence of %s: %w", userID, err)
	}
	return nil
}

func (p *RedisPresence) Unregister(ctx context.Context, userID, connID string) error {
	err := unregisterScript.Run(ctx, p.client, []string{userKey(userID), onlineKey}, connID, userID).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to unregister presence of %s: %w", userID, err)
	}
	return nil
}

func (p *RedisPresence) Lookup(ctx context.Context, userID string) ([]string, error) {
	ids, err := p.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to look up presence of %s: %w", userID, err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Online lists users that still have a live connection key. Users left in
// the online set by a node that stopped refreshing are pruned.
func (p *RedisPresence) Online(ctx context.Context) ([]string, error) {
	users, err := p.client.SMembers(ctx, onlineKey).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to list online users: %w", err)
	}
	if len(users) == 0 {
		return []string{}, nil
	}

	exists := make([]*redis.IntCmd, len(users))
	_, err = p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range users {
			exists[i] = pipe.Exists(ctx, userKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check online users: %w", err)
	}

	live := make([]string, 0, len(users))
	var stale []interface{}
	for i, id := range users {
		if exists[i].Val() > 0 {
			live = append(live, id)
		} else {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := p.client.SRem(ctx, onlineKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune stale users: %w", err)
		}
	}
	sort.Strings(live)
	return live, nil
}
