// Package redis keeps the session slot in a Redis hash:
//
//	session -> {user_id: <id>, token: <jwt>}
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/session"
	"github.com/gomodule/redigo/redis"
	"github.com/mitchellh/mapstructure"
)

// DefaultKey is the hash the session is stored under.
const DefaultKey = "session"

// Pool hands out connections; *redis.Pool satisfies it.
type Pool interface {
	GetContext(ctx context.Context) (redis.Conn, error)
}

type Store struct {
	pool Pool
	key  string
	ttl  time.Duration
}

// NewPool dials url ("redis://host:6379/0") lazily.
func NewPool(url string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     3,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(url)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// New stores the slot under DefaultKey. A positive ttl expires the slot
// together with the token it holds.
func New(pool Pool, ttl time.Duration) *Store {
	return &Store{pool: pool, key: DefaultKey, ttl: ttl}
}

func (s *Store) conn(ctx context.Context) (redis.Conn, error) {
	c, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	return c, nil
}

func (s *Store) Get(ctx context.Context) (*models.Session, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	fields, err := redis.StringMap(c.Do("HGETALL", s.key))
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return nil, session.ErrEmpty
	}

	var sess models.Session
	if err := mapstructure.Decode(fields, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if err := models.Validate(&sess); err != nil {
		return nil, fmt.Errorf("%w: %w", session.ErrEmpty, err)
	}
	return &sess, nil
}

func (s *Store) Set(ctx context.Context, sess *models.Session) error {
	if err := models.Validate(sess); err != nil {
		return err
	}

	c, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.Do("DEL", s.key); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if _, err := c.Do("HSET", s.key, "user_id", sess.UserID, "token", sess.Token); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	if s.ttl > 0 {
		if _, err := c.Do("EXPIRE", s.key, int64(s.ttl/time.Second)); err != nil {
			return fmt.Errorf("redis expire: %w", err)
		}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context) error {
	c, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.Do("DEL", s.key); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) Healthcheck(ctx context.Context) error {
	c, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := redis.String(c.Do("PING")); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
