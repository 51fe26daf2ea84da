package profile

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreEmpty(t *testing.T) {
	store := NewMemoryStore(Profile{})
	if _, err := store.Get(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreSeed(t *testing.T) {
	store := NewMemoryStore(Profile{BusinessName: "  Acme Labs  ", WalletAddress: "bc1xyz"})
	p, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.BusinessName != "Acme Labs" || p.WalletAddress != "bc1xyz" {
		t.Fatalf("profile = %+v", p)
	}
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	store := NewMemoryStore(Profile{BusinessName: "Old"})
	if err := store.Put(context.Background(), Profile{BusinessName: "New", WalletAddress: " 0xabc "}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	p, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.BusinessName != "New" || p.WalletAddress != "0xabc" {
		t.Fatalf("profile = %+v", p)
	}
}
