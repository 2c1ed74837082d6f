package datastore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record as a JSON string under <prefix>:<kind>:<id>,
// the kind's ids in a sorted set scored by id, and an INCR counter per kind
// for id assignment. Queries scan the kind and filter client side.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) recordKey(key Key) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, key.Kind, key.ID)
}

func (s *RedisStore) indexKey(kind string) string {
	return fmt.Sprintf("%s:%s:ids", s.prefix, kind)
}

func (s *RedisStore) sequenceKey(kind string) string {
	return fmt.Sprintf("%s:%s:seq", s.prefix, kind)
}

func (s *RedisStore) Get(ctx context.Context, key Key) (*Entity, error) {
	if !key.valid() || key.Incomplete() {
		return nil, ErrInvalidKey
	}

	data, err := s.client.Get(ctx, s.recordKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	props, err := decodeProperties(data)
	if err != nil {
		return nil, err
	}
	return &Entity{Key: key, Properties: props}, nil
}

func (s *RedisStore) Put(ctx context.Context, e *Entity) (Key, error) {
	if e == nil || !e.Key.valid() {
		return Key{}, ErrInvalidKey
	}
	data, err := encodeProperties(e.Properties)
	if err != nil {
		return Key{}, fmt.Errorf("encode properties: %w", err)
	}

	key := e.Key
	if key.Incomplete() {
		id, err := s.client.Incr(ctx, s.sequenceKey(key.Kind)).Result()
		if err != nil {
			return Key{}, fmt.Errorf("allocate id for %s: %w", key.Kind, err)
		}
		key.ID = id
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(key), data, 0)
		pipe.ZAdd(ctx, s.indexKey(key.Kind), redis.Z{Score: float64(key.ID), Member: key.ID})
		return nil
	})
	if err != nil {
		return Key{}, fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if !key.valid() {
		return ErrInvalidKey
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.recordKey(key))
		pipe.ZRem(ctx, s.indexKey(key.Kind), key.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Query(ctx context.Context, q *Query) ([]*Entity, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(q.Kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", q.Kind, err)
	}
	if len(members) == 0 {
		return []*Entity{}, nil
	}

	ids := make([]int64, 0, len(members))
	keys := make([]string, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		keys = append(keys, s.recordKey(NewKey(q.Kind, id)))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", q.Kind, err)
	}

	entities := make([]*Entity, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry outlived its record
			continue
		}
		props, err := decodeProperties([]byte(raw))
		if err != nil {
			return nil, err
		}
		if q.Matches(props) {
			entities = append(entities, &Entity{Key: NewKey(q.Kind, ids[i]), Properties: props})
		}
	}
	return entities, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
