package quizgame

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "quiz:session:"

// RedisStore keeps session values in Redis and only the signed session id in
// the cookie. It implements sessions.Store.
type RedisStore struct {
	client  *redis.Client
	Codecs  []securecookie.Codec
	Options *sessions.Options
}

// NewRedisStore returns a store backed by client. keyPairs are used the same
// way as for sessions.NewCookieStore.
func NewRedisStore(client *redis.Client, keyPairs ...[]byte) *RedisStore {
	s := &RedisStore{
		client: client,
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   86400 * 30,
			HttpOnly: true,
		},
	}
	s.MaxAge(s.Options.MaxAge)
	for _, codec := range s.Codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			// values live in Redis, not in the cookie
			sc.MaxLength(0)
		}
	}
	return s
}

// MaxAge sets the lifetime of both the cookie and the Redis entry
func (s *RedisStore) MaxAge(age int) {
	s.Options.MaxAge = age
	for _, codec := range s.Codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(age)
		}
	}
}

// Get returns the session cached in the request registry
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New always loads the session from Redis, bypassing the request registry
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, errCookie := r.Cookie(name)
	if errCookie != nil {
		return session, nil
	}

	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		session.ID = ""
		return session, err
	}

	err := s.load(r.Context(), session)
	switch {
	case err == nil:
		session.IsNew = false
	case errors.Is(err, redis.Nil):
		// expired or evicted: keep the id, start with empty values
		err = nil
	}
	return session, err
}

// Save writes the session values to Redis and the id cookie to the response
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()

	if session.Options.MaxAge <= 0 {
		if session.ID != "" {
			if err := s.client.Del(ctx, redisSessionPrefix+session.ID).Err(); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.client.Set(ctx, redisSessionPrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session id: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) error {
	data, err := s.client.Get(ctx, redisSessionPrefix+session.ID).Result()
	if err != nil {
		return err
	}
	return securecookie.DecodeMulti(session.Name(), data, &session.Values, s.Codecs...)
}

// Ping checks that Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
