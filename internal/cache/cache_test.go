package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestVerdictKey(t *testing.T) {
	k1 := VerdictKey("t1", "answer", []string{"riskIdentification"})
	k2 := VerdictKey("t1", "answer", []string{"riskIdentification"})
	if k1 != k2 {
		t.Error("identical inputs produced different keys")
	}

	if VerdictKey("t2", "answer", []string{"riskIdentification"}) == k1 {
		t.Error("different task ids share a key")
	}
	if VerdictKey("t1", "other", []string{"riskIdentification"}) == k1 {
		t.Error("different answers share a key")
	}
	if VerdictKey("t1", "answer", []string{"nextStepQuality"}) == k1 {
		t.Error("different dimension sets share a key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Hour)

	if _, found := c.Get("missing"); found {
		t.Error("empty cache reported a hit")
	}

	if err := c.Set("k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, found := c.Get("k")
	if !found || !bytes.Equal(got, []byte("v")) {
		t.Errorf("get = %q/%v, want v/true", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("deleted key still present")
	}

	_ = c.Set("a", []byte("1"), time.Hour)
	_ = c.Set("b", []byte("2"), time.Hour)
	if err := c.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, found := c.Get("a"); found {
		t.Error("cleared cache still serves entries")
	}
}

func TestDiskCache(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if _, found := c.Get("missing"); found {
		t.Error("empty cache reported a hit")
	}

	if err := c.Set("k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, found := c.Get("k")
	if !found || !bytes.Equal(got, []byte("v")) {
		t.Errorf("get = %q/%v, want v/true", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("deleted key still present")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expired entry served")
	}
}
