package sessions

import (
	"testing"
	"time"
)

func TestConfirmDedupes(t *testing.T) {
	r := NewRegistry(time.Hour)
	r.Create("m1", "c1", "g1", "chess", "author")

	count, changed, ok := r.Confirm("m1", "u1")
	if !ok || !changed || count != 1 {
		t.Fatalf("first confirm: count=%d changed=%v ok=%v", count, changed, ok)
	}
	count, changed, ok = r.Confirm("m1", "u1")
	if !ok || changed || count != 1 {
		t.Fatalf("repeat confirm: count=%d changed=%v ok=%v", count, changed, ok)
	}
	count, changed, _ = r.Confirm("m1", "u2")
	if !changed || count != 2 {
		t.Fatalf("second user: count=%d changed=%v", count, changed)
	}
}

func TestConfirmUnknownMessage(t *testing.T) {
	r := NewRegistry(time.Hour)
	if _, _, ok := r.Confirm("nope", "u1"); ok {
		t.Fatalf("confirmed against missing session")
	}
}

func TestSweepExpiredOnly(t *testing.T) {
	base := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Hour)
	r.now = func() time.Time { return base }

	r.Create("old", "c", "g", "game", "a")
	r.now = func() time.Time { return base.Add(30 * time.Minute) }
	r.Create("fresh", "c", "g", "game", "a")

	expired := r.SweepExpired(base.Add(61 * time.Minute))
	if len(expired) != 1 || expired[0].MessageID != "old" {
		t.Fatalf("expired = %+v", expired)
	}
	if r.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", r.Len())
	}
	if _, ok := r.Get("fresh"); !ok {
		t.Fatalf("fresh session swept")
	}
}

func TestCreateExpiryUsesTTL(t *testing.T) {
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(0) // falls back to DefaultTTL
	r.now = func() time.Time { return base }

	s := r.Create("m", "c", "g", "game", "a")
	if got := s.ExpiresAt; !got.Equal(base.Add(DefaultTTL)) {
		t.Fatalf("expiry = %s", got)
	}
}
