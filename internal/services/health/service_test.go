package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestStatus(t *testing.T) {
	ctx := context.Background()

	body, ok := NewService(nil).Status(ctx)
	if !ok || body["db"] != "memory" {
		t.Fatalf("memory: got %v %v", body, ok)
	}

	body, ok = NewService(pingFunc(func(context.Context) error { return nil })).Status(ctx)
	if !ok || body["db"] != "up" {
		t.Fatalf("up: got %v %v", body, ok)
	}

	body, ok = NewService(pingFunc(func(context.Context) error { return errors.New("down") })).Status(ctx)
	if ok || body["ok"] != false {
		t.Fatalf("down: got %v %v", body, ok)
	}
}
