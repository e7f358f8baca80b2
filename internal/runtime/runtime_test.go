package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/vivocha/vubsub/internal/config"
	pebblestore "github.com/vivocha/vubsub/internal/storage/pebble"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestOpenAndHealth(t *testing.T) {
	rt := newTestRuntime(t)
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestEnsureLogCached(t *testing.T) {
	rt := newTestRuntime(t)
	l1, err := rt.EnsureLog("ns1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	l2, err := rt.EnsureLog("ns1")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if l1 != l2 {
		t.Fatalf("expected the same cached log instance")
	}
}

func TestEnsureLogDefaultNamespace(t *testing.T) {
	rt := newTestRuntime(t)
	l, err := rt.EnsureLog("")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if l.Namespace() != "default" {
		t.Fatalf("expected default namespace, got %q", l.Namespace())
	}
}
