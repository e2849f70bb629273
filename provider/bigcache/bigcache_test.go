package bigcache

import (
	"bytes"
	"context"
	"testing"
	"time"

	pr "github.com/unkn0wn-root/bookcache/provider"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{LifeWindow: time.Minute, CleanWindow: time.Minute})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestRoundTripAndIdempotentDelete(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	if _, out, err := p.Get(ctx, "books:all"); out != pr.Miss || err != nil {
		t.Fatalf("Get on empty: out=%v err=%v", out, err)
	}

	want := []byte(`[{"id":1}]`)
	if out, err := p.Set(ctx, "books:all", want, 30*time.Second); out != pr.OK || err != nil {
		t.Fatalf("Set: out=%v err=%v", out, err)
	}
	got, out, err := p.Get(ctx, "books:all")
	if out != pr.OK || err != nil || !bytes.Equal(got, want) {
		t.Fatalf("Get: out=%v err=%v got=%q", out, err, got)
	}

	for i := 0; i < 2; i++ {
		if out, err := p.Del(ctx, "books:all"); out != pr.OK || err != nil {
			t.Fatalf("Del #%d: out=%v err=%v", i, out, err)
		}
	}
	if _, out, _ := p.Get(ctx, "books:all"); out != pr.Miss {
		t.Fatalf("Get after Del: out=%v", out)
	}
}

func TestNewRejectsZeroLifeWindow(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for zero life window")
	}
}
