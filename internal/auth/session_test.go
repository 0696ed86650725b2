package auth_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/openstay/marketplace/backend/internal/auth"
)

func testSessions(t *testing.T) (*auth.SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return auth.NewSessionStore(rdb), mr
}

func TestSessionLifecycle(t *testing.T) {
	sessions, _ := testSessions(t)
	ctx := context.Background()

	sid, err := sessions.Create(ctx, "user-42")
	if err != nil {
		t.Fatal(err)
	}
	if sid == "" {
		t.Fatal("empty session id")
	}

	got, err := sessions.Get(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	if got != "user-42" {
		t.Errorf("Get = %q, want user-42", got)
	}

	if err := sessions.Delete(ctx, sid); err != nil {
		t.Fatal(err)
	}
	got, err = sessions.Get(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("Get after delete = %q, want empty", got)
	}
}

func TestSessionUnknownIDIsNotAnError(t *testing.T) {
	sessions, _ := testSessions(t)

	got, err := sessions.Get(context.Background(), "no-such-session")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("Get = %q, want empty", got)
	}
}

func TestSessionExpires(t *testing.T) {
	sessions, mr := testSessions(t)
	ctx := context.Background()

	sid, err := sessions.Create(ctx, "user-42")
	if err != nil {
		t.Fatal(err)
	}

	mr.FastForward(auth.SessionTTL + 1)

	got, err := sessions.Get(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("Get after TTL = %q, want empty", got)
	}
}
