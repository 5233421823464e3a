package matchmaking

import (
	"errors"
	"testing"
	"time"
)

func TestSessionTableLinkIsSymmetric(t *testing.T) {
	table := NewSessionTable()
	at := time.Unix(1_700_000_000, 0).UTC()

	if err := table.Link(1, 2, at); err != nil {
		t.Fatalf("link: %v", err)
	}

	if p, ok := table.PartnerOf(1); !ok || p != 2 {
		t.Fatalf("expected 1 -> 2, got %d ok=%v", p, ok)
	}
	if p, ok := table.PartnerOf(2); !ok || p != 1 {
		t.Fatalf("expected 2 -> 1, got %d ok=%v", p, ok)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", table.Len())
	}

	session, ok := table.Session(2)
	if !ok || session.UserB != 1 || !session.StartedAt.Equal(at) {
		t.Fatalf("unexpected session: %+v ok=%v", session, ok)
	}
}

func TestSessionTableRejectsInvalidLinks(t *testing.T) {
	table := NewSessionTable()
	now := time.Now()

	if err := table.Link(5, 5, now); !errors.Is(err, ErrSelfLink) {
		t.Fatalf("expected ErrSelfLink, got %v", err)
	}
	if err := table.Link(1, 2, now); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := table.Link(3, 2, now); !errors.Is(err, ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked for linked right side, got %v", err)
	}
	if err := table.Link(1, 3, now); !errors.Is(err, ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked for linked left side, got %v", err)
	}
	if _, ok := table.PartnerOf(3); ok {
		t.Fatalf("failed link must not leave a partial entry")
	}
}

func TestSessionTableUnlinkDropsBothDirections(t *testing.T) {
	table := NewSessionTable()
	if err := table.Link(1, 2, time.Now()); err != nil {
		t.Fatalf("link: %v", err)
	}

	partner, ok := table.Unlink(2)
	if !ok || partner != 1 {
		t.Fatalf("expected unlink to return 1, got %d ok=%v", partner, ok)
	}
	if _, ok := table.PartnerOf(1); ok {
		t.Fatalf("partner direction must be removed")
	}
	if _, ok := table.Unlink(1); ok {
		t.Fatalf("second unlink must report no partner")
	}
	if table.Len() != 0 {
		t.Fatalf("expected empty table, got %d", table.Len())
	}
}
