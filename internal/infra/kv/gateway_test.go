package kv_test

import (
	"context"
	"testing"

	"healthcare-storefront/internal/infra/kv"
	"healthcare-storefront/internal/infra/logging"
)

type doc struct {
	Name string `json:"name"`
}

func TestGatewayRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	gw := kv.NewGateway(store, logging.Nop())

	gw.SetJSON(ctx, "storefront_doc", doc{Name: "a"})

	var out doc
	if !gw.GetJSON(ctx, "storefront_doc", &out) {
		t.Fatal("expected stored document")
	}
	if out.Name != "a" {
		t.Errorf("name = %q", out.Name)
	}

	// Last write wins.
	gw.SetJSON(ctx, "storefront_doc", doc{Name: "b"})
	gw.GetJSON(ctx, "storefront_doc", &out)
	if out.Name != "b" {
		t.Errorf("name after overwrite = %q", out.Name)
	}

	gw.Remove(ctx, "storefront_doc")
	if gw.GetJSON(ctx, "storefront_doc", &out) {
		t.Error("removed document must read as absent")
	}
}

func TestGatewaySilentDegrade(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	gw := kv.NewGateway(store, logging.Nop())
	store.Disable()

	// None of these may panic or error; the gateway swallows storage faults.
	gw.SetJSON(ctx, "storefront_doc", doc{Name: "a"})
	var out doc
	if gw.GetJSON(ctx, "storefront_doc", &out) {
		t.Error("disabled store must read as absent")
	}
	gw.Remove(ctx, "storefront_doc")
	if keys := gw.Keys(ctx, "storefront_"); len(keys) != 0 {
		t.Errorf("keys = %v, want empty", keys)
	}
}

func TestGatewayDropsCorruptDocuments(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	gw := kv.NewGateway(store, logging.Nop())

	if err := store.Set(ctx, "storefront_doc", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var out doc
	if gw.GetJSON(ctx, "storefront_doc", &out) {
		t.Fatal("corrupt document must read as absent")
	}
	// The corrupt entry is removed so later reads stay clean.
	if _, err := store.Get(ctx, "storefront_doc"); err == nil {
		t.Error("corrupt document should have been deleted")
	}
}

func TestGatewayKeysPrefix(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	gw := kv.NewGateway(store, logging.Nop())

	gw.SetJSON(ctx, "demo_access:a", doc{})
	gw.SetJSON(ctx, "demo_access:b", doc{})
	gw.SetJSON(ctx, "storefront_user_id", "u1")

	keys := gw.Keys(ctx, "demo_access:")
	if len(keys) != 2 {
		t.Fatalf("keys = %v, want 2 entries", keys)
	}
}
