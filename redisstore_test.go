package quizgame

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestRedisStore runs the store against an in-process Redis
func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, []byte("redis-store-test-secret"))
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return store, mr
}

func requestWithCookies(cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/quizzes/randomplay", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)

	first := requestWithCookies(nil)
	session, err := store.Get(first, SessionName)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !session.IsNew {
		t.Fatal("session without cookie should be new")
	}

	solved := make([]int64, 2000)
	for i := range solved {
		solved[i] = int64(i + 1)
	}
	StoreGameState(session, GameState{Solved: solved})

	rec := httptest.NewRecorder()
	if err := session.Save(first, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}

	loaded, err := store.New(requestWithCookies(cookies), SessionName)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.IsNew || loaded.ID != session.ID {
		t.Fatalf("reloaded session %q new=%v, want %q", loaded.ID, loaded.IsNew, session.ID)
	}
	if got := LoadGameState(loaded).Score(); got != len(solved) {
		t.Errorf("score = %d, want %d", got, len(solved))
	}
	if key, fresh := SessionKey(loaded); fresh || key != session.ID {
		t.Errorf("SessionKey = %q fresh=%v, want %q", key, fresh, session.ID)
	}

	if ttl := mr.TTL(redisSessionPrefix + session.ID); ttl <= 0 || ttl > 30*24*time.Hour {
		t.Errorf("session ttl = %v", ttl)
	}

	loaded.Options.MaxAge = -1
	if err := loaded.Save(requestWithCookies(cookies), httptest.NewRecorder()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	gone, err := store.New(requestWithCookies(cookies), SessionName)
	if err != nil {
		t.Fatalf("reload after delete: %v", err)
	}
	if !gone.IsNew || LoadGameState(gone).Score() != 0 {
		t.Errorf("deleted session still has state: %+v", gone.Values)
	}
	if mr.Exists(redisSessionPrefix + session.ID) {
		t.Error("deleted session is still stored in redis")
	}
}

func TestRedisStoreExpiredSession(t *testing.T) {
	store, mr := newTestRedisStore(t)
	store.MaxAge(60)

	r := requestWithCookies(nil)
	session, err := store.New(r, SessionName)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	StoreGameState(session, GameState{Solved: []int64{4, 8}})
	rec := httptest.NewRecorder()
	if err := session.Save(r, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	cookies := rec.Result().Cookies()
	if cookies[0].MaxAge != 60 {
		t.Errorf("cookie max age = %d, want 60", cookies[0].MaxAge)
	}

	mr.FastForward(61 * time.Second)

	expired, err := store.New(requestWithCookies(cookies), SessionName)
	if err != nil {
		t.Fatalf("expired entry should not be an error: %v", err)
	}
	if !expired.IsNew || expired.ID != session.ID {
		t.Errorf("expired session new=%v id=%q, want new with id %q", expired.IsNew, expired.ID, session.ID)
	}
	if got := LoadGameState(expired).Score(); got != 0 {
		t.Errorf("expired session score = %d, want 0", got)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.SetError("ERR server unavailable")

	if err := store.Ping(context.Background()); err == nil {
		t.Error("ping should fail while redis is failing")
	}
	session, _ := store.New(requestWithCookies(nil), SessionName)
	if err := session.Save(requestWithCookies(nil), httptest.NewRecorder()); err == nil {
		t.Error("save should fail while redis is failing")
	}
}

func TestRedisStoreRejectsForgedCookie(t *testing.T) {
	store, _ := newTestRedisStore(t)

	r := requestWithCookies([]*http.Cookie{{Name: SessionName, Value: "forged"}})
	session, err := store.New(r, SessionName)
	if err == nil {
		t.Error("expected a decode error for a forged cookie")
	}
	if session == nil || !session.IsNew || session.ID != "" {
		t.Errorf("forged cookie should yield a fresh session, got %+v", session)
	}
}
