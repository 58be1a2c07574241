package registry

import (
	"testing"
)

func TestStreamersPutAndDisplace(t *testing.T) {
	s := NewStreamers()

	if _, replaced := s.Put("s1", "c1"); replaced {
		t.Fatal("first put should not displace anything")
	}

	entry, ok := s.Get("s1")
	if !ok || entry.ConnID != "c1" {
		t.Fatalf("Get = %+v, %v", entry, ok)
	}

	// Same connection re-claiming is not a displacement.
	if _, replaced := s.Put("s1", "c1"); replaced {
		t.Fatal("re-put by same connection should not displace")
	}

	// Last writer wins.
	displaced, replaced := s.Put("s1", "c2")
	if !replaced || displaced.ConnID != "c1" {
		t.Fatalf("displaced = %+v, replaced = %v", displaced, replaced)
	}

	entry, _ = s.Get("s1")
	if entry.ConnID != "c2" {
		t.Errorf("entry.ConnID = %q, want c2", entry.ConnID)
	}
}

func TestStreamersRemoveIfConn(t *testing.T) {
	s := NewStreamers()
	s.Put("s1", "c1")

	if s.RemoveIfConn("s1", "other") {
		t.Fatal("remove with wrong conn id should be a no-op")
	}
	if _, ok := s.Get("s1"); !ok {
		t.Fatal("entry should survive a mismatched remove")
	}

	if !s.RemoveIfConn("s1", "c1") {
		t.Fatal("remove with matching conn id should succeed")
	}
	if _, ok := s.Get("s1"); ok {
		t.Fatal("entry should be gone")
	}

	// Racing remove after the entry is gone is a no-op.
	if s.RemoveIfConn("s1", "c1") {
		t.Fatal("second remove should be a no-op")
	}
}
