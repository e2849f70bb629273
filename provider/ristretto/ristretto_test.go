package ristretto

import (
	"bytes"
	"context"
	"testing"
	"time"

	pr "github.com/unkn0wn-root/bookcache/provider"
)

func TestSyncWritesVisibleImmediately(t *testing.T) {
	ctx := context.Background()
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close(ctx)

	want := []byte("payload")
	if out, err := p.Set(ctx, "reviews:book:1", want, time.Minute); out != pr.OK || err != nil {
		t.Fatalf("Set: out=%v err=%v", out, err)
	}
	got, out, err := p.Get(ctx, "reviews:book:1")
	if out != pr.OK || err != nil || !bytes.Equal(got, want) {
		t.Fatalf("Get: out=%v err=%v got=%q", out, err, got)
	}

	if out, _ := p.Del(ctx, "reviews:book:1"); out != pr.OK {
		t.Fatalf("Del: out=%v", out)
	}
	if out, _ := p.Del(ctx, "reviews:book:1"); out != pr.OK {
		t.Fatalf("Del absent: out=%v", out)
	}
	if _, out, _ := p.Get(ctx, "reviews:book:1"); out != pr.Miss {
		t.Fatalf("Get after Del: out=%v", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error")
	}
}
