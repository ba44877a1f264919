package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/panel"
	"github.com/matzehuels/blockscape/pkg/provider"
)

func newPanel() *panel.Panel {
	return panel.New(provider.NewDemo(1))
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(time.Minute)
	defer reg.Close()

	sess, err := reg.Create(context.Background(), newPanel)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("session id %q is not a UUID: %v", sess.ID, err)
	}

	got, err := reg.Get(sess.ID)
	if err != nil || got != sess {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if err := got.Panel.FetchWait(context.Background(), 1, 2); err != nil {
		t.Fatalf("panel not running: %v", err)
	}

	reg.Delete(sess.ID)
	select {
	case <-sess.Panel.Done():
	default:
		t.Error("Delete did not tear the panel down")
	}
	if _, err := reg.Get(sess.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
	reg.Delete(sess.ID)
}

func TestRegistryExpiry(t *testing.T) {
	c := &clock{t: time.Unix(1000, 0)}
	reg := NewRegistry(time.Minute)
	reg.now = c.now
	defer reg.Close()

	a, _ := reg.Create(context.Background(), newPanel)
	b, _ := reg.Create(context.Background(), newPanel)

	// Touching a keeps it alive past b's expiry.
	c.t = c.t.Add(40 * time.Second)
	if _, err := reg.Get(a.ID); err != nil {
		t.Fatal(err)
	}
	c.t = c.t.Add(40 * time.Second)

	if _, err := reg.Get(b.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("expired session returned: %v", err)
	}
	<-b.Panel.Done()

	c.t = c.t.Add(2 * time.Minute)
	if n := reg.Cleanup(); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	<-a.Panel.Done()
	if reg.Len() != 0 {
		t.Errorf("Len() = %d", reg.Len())
	}
}

func TestRegistryLimit(t *testing.T) {
	reg := NewRegistry(time.Minute)
	reg.max = 2
	defer reg.Close()

	for range 2 {
		if _, err := reg.Create(context.Background(), newPanel); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := reg.Create(context.Background(), newPanel); err == nil {
		t.Error("Create beyond the limit succeeded")
	}
}

func TestRegistryClose(t *testing.T) {
	reg := NewRegistry(0)
	if reg.ttl != DefaultTTL {
		t.Errorf("ttl = %v", reg.ttl)
	}
	s, _ := reg.Create(context.Background(), newPanel)
	reg.Close()
	<-s.Panel.Done()
	if reg.Len() != 0 {
		t.Errorf("Len() after Close = %d", reg.Len())
	}
}
