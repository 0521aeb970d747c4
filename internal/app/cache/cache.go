/*
Package cache keeps short-lived room snapshots in Redis for read requests.

RoomCache sits in front of a room.Reader; InvalidatingStore wraps the room.Store used by
membership changes and drops the snapshot once an update is persisted. Redis is best effort:
any Redis error falls through to the wrapped store.

Every invalidation bumps a per-room generation. A snapshot loaded from the store is written
only if the generation read before the load is still current, so a read racing a removal
cannot put the pre-removal room back into the cache.
*/
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"secretnick/internal/app/room"
	"secretnick/internal/app/user"
	"secretnick/internal/pkg/logx"
)

const keyPrefix = "secretnick:room:"

// genGrace keeps a generation alive past the snapshot TTL so in-flight loads still see it.
const genGrace = time.Minute

// fillScript stores the snapshot (ARGV[2], TTL ARGV[3] ms) only if the generation still equals ARGV[1].
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// invalidateScript bumps the generation (TTL ARGV[1] ms) and drops the snapshot.
var invalidateScript = redis.NewScript(`
redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ARGV[1])
redis.call('DEL', KEYS[1])
return 1
`)

// Client is the part of the go-redis API the cache needs. *redis.Client satisfies it.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	redis.Scripter
}

// RoomKey returns the Redis key holding the snapshot of roomID.
// The hash tag keeps it in the slot of GenerationKey.
func RoomKey(roomID int64) string {
	return keyPrefix + "{" + strconv.FormatInt(roomID, 10) + "}"
}

// GenerationKey returns the Redis key counting invalidations of roomID.
func GenerationKey(roomID int64) string {
	return RoomKey(roomID) + ":gen"
}

// snapshot carries the fields of room.Room that its JSON form leaves out.
type snapshot struct {
	Room     *room.Room  `json:"room"`
	Revision uuid.UUID   `json:"revision"`
	Users    []user.User `json:"users"`
}

func encode(r *room.Room) ([]byte, error) {
	return json.Marshal(snapshot{Room: r, Revision: r.Revision, Users: r.Users})
}

func decode(b []byte) (*room.Room, error) {
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Room == nil {
		return nil, errors.New("cache: snapshot without room")
	}
	s.Room.Revision = s.Revision
	s.Room.Users = s.Users
	return s.Room, nil
}

// RoomCache serves rooms by id from Redis, loading misses from next.
type RoomCache struct {
	rdb  Client
	next room.Reader
	ttl  time.Duration

	logger zerolog.Logger
}

// NewRoomCache constructs a RoomCache storing snapshots for ttl.
func NewRoomCache(rdb Client, next room.Reader, ttl time.Duration) *RoomCache {
	return &RoomCache{
		rdb:    rdb,
		next:   next,
		ttl:    ttl,
		logger: logx.Logger().With().Str("component", "RoomCache").Logger(),
	}
}

var _ room.Reader = (*RoomCache)(nil)

// GetByID returns the cached snapshot of the room or loads and caches it.
func (c *RoomCache) GetByID(ctx context.Context, id int64) (*room.Room, error) {
	key := RoomKey(id)

	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		r, err := decode(b)
		if err == nil {
			return r, nil
		}
		c.logger.Warn().Err(err).Str("key", key).Msg("Discarding unreadable room snapshot.")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn().Err(err).Str("key", key).Msg("Room cache read failed.")
		return c.next.GetByID(ctx, id)
	}

	gen, err := c.generation(ctx, id)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Room cache generation read failed.")
		return c.next.GetByID(ctx, id)
	}

	r, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.fill(ctx, r, gen)
	return r, nil
}

func (c *RoomCache) generation(ctx context.Context, id int64) (string, error) {
	gen, err := c.rdb.Get(ctx, GenerationKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// fill writes the snapshot of r unless the room was invalidated after gen was read.
func (c *RoomCache) fill(ctx context.Context, r *room.Room, gen string) {
	b, err := encode(r)
	if err != nil {
		c.logger.Error().Err(err).Int64("room_id", r.ID).Msg("Failed to encode room snapshot.")
		return
	}

	stored, err := fillScript.Run(ctx, c.rdb,
		[]string{RoomKey(r.ID), GenerationKey(r.ID)},
		gen, string(b), c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		c.logger.Warn().Err(err).Int64("room_id", r.ID).Msg("Room cache write failed.")
		return
	}
	if stored == 0 {
		c.logger.Debug().Int64("room_id", r.ID).Msg("Room changed during load, snapshot not cached.")
	}
}

// Invalidate drops the snapshot of roomID and bumps its generation.
func (c *RoomCache) Invalidate(ctx context.Context, roomID int64) error {
	return invalidateScript.Run(ctx, c.rdb,
		[]string{RoomKey(roomID), GenerationKey(roomID)},
		(c.ttl + genGrace).Milliseconds(),
	).Err()
}

// InvalidatingStore wraps a room.Store and drops cached snapshots after each persisted update.
type InvalidatingStore struct {
	room.Store
	cache *RoomCache
}

// NewInvalidatingStore wraps next so that updates invalidate cache.
func NewInvalidatingStore(next room.Store, cache *RoomCache) *InvalidatingStore {
	return &InvalidatingStore{Store: next, cache: cache}
}

// Update persists r and invalidates its snapshot. A failed invalidation is logged;
// the snapshot then expires with its TTL.
func (s *InvalidatingStore) Update(ctx context.Context, r *room.Room) error {
	if err := s.Store.Update(ctx, r); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, r.ID); err != nil {
		s.cache.logger.Warn().Err(err).Int64("room_id", r.ID).Msg("Room cache invalidation failed.")
	}
	return nil
}
