package snapshot

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/jwalitptl/lims-api/pkg/errors"
)

// RedisAdapter stores the snapshot under a single key. A SET is atomic on the
// server, so a failed write cannot leave a partial snapshot behind.
type RedisAdapter struct {
	client *redis.Client
	key    string
}

func NewRedis(url, key string) (*RedisAdapter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperrors.Persistence("invalid redis URL", err)
	}
	return &RedisAdapter{client: redis.NewClient(opts), key: key}, nil
}

func (r *RedisAdapter) Save(ctx context.Context, state *State) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return apperrors.Persistence("failed to write snapshot key", err)
	}
	return nil
}

func (r *RedisAdapter) Load(ctx context.Context) (*State, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Empty(), nil
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to read snapshot key", err)
	}
	return decode(data)
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}
