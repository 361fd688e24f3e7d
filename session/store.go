package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the Redis round-trip fails.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionExists is returned when Save would overwrite an existing blob.
var ErrSessionExists = errors.New("converted session already stored")

// ErrSessionNotFound is returned when no blob is stored under the id.
var ErrSessionNotFound = errors.New("converted session not found")

const saveSessionScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
if tonumber(ARGV[2]) > 0 then
  redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
else
  redis.call("SET", KEYS[1], ARGV[1])
end
redis.call("SADD", KEYS[2], ARGV[3])
return 1
`

var saveSessionLua = redis.NewScript(saveSessionScript)

const deleteSessionScript = `
local existed = redis.call("EXISTS", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
if existed == 1 then
  redis.call("DEL", KEYS[1])
end
return existed
`

var deleteSessionLua = redis.NewScript(deleteSessionScript)

// Store keeps canonical session blobs in Redis so another process can pick
// them up by id.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore returns a Store writing keys under prefix. A ttl of zero keeps
// blobs until they are deleted.
func NewStore(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "tgs"
	}
	return &Store{
		redis:  rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Store) key(id string) string {
	return s.prefix + ":s:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + ":idx"
}

// Save stores data under id. It never overwrites an existing blob.
func (s *Store) Save(ctx context.Context, id string, data []byte) error {
	res, err := saveSessionLua.Run(
		ctx,
		s.redis,
		[]string{s.key(id), s.indexKey()},
		data,
		s.ttl.Milliseconds(),
		id,
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if res == 0 {
		return ErrSessionExists
	}
	return nil
}

// Load returns the blob stored under id.
func (s *Store) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return data, nil
}

// Delete removes id. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := deleteSessionLua.Run(ctx, s.redis, []string{s.key(id), s.indexKey()}, id).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// IDs lists the ids currently indexed. Expired blobs are pruned from the
// index as a side effect.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	ids, err := s.redis.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	live := ids[:0]
	for _, id := range ids {
		n, err := s.redis.Exists(ctx, s.key(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if n == 0 {
			_ = s.redis.SRem(ctx, s.indexKey(), id).Err()
			continue
		}
		live = append(live, id)
	}
	return live, nil
}
