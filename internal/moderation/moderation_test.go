package moderation

import "testing"

func TestLedgerRecordMonotonic(t *testing.T) {
	l := Ledger{}
	for want := 1; want <= 5; want++ {
		if got := l.Record("g1", "u1"); got != want {
			t.Fatalf("warning %d: got count %d", want, got)
		}
	}
	if l.Count("g1", "u1") != 5 {
		t.Fatalf("count = %d, want 5", l.Count("g1", "u1"))
	}
}

func TestLedgerIsolation(t *testing.T) {
	l := Ledger{}
	l.Record("g1", "u1")
	l.Record("g1", "u1")
	l.Record("g2", "u1")
	if l.Count("g1", "u1") != 2 || l.Count("g2", "u1") != 1 {
		t.Fatalf("counts leaked across guilds: g1=%d g2=%d", l.Count("g1", "u1"), l.Count("g2", "u1"))
	}
	if l.Count("g1", "u2") != 0 {
		t.Fatalf("unknown user has count %d", l.Count("g1", "u2"))
	}
}

func TestLedgerClearThenRecord(t *testing.T) {
	l := Ledger{}
	l.Record("g1", "u1")
	l.Record("g1", "u1")
	l.Clear("g1", "u1")
	if got := l.Count("g1", "u1"); got != 0 {
		t.Fatalf("after clear: count = %d", got)
	}
	if _, ok := l["g1"]; ok {
		t.Fatalf("empty guild map not pruned")
	}
	// Clearing an absent entry is a no-op, not an error.
	l.Clear("g1", "u1")
	if got := l.Record("g1", "u1"); got != 1 {
		t.Fatalf("first warning after clear = %d, want 1", got)
	}
}

func TestEscalated(t *testing.T) {
	if Escalated(EscalateAt - 1) {
		t.Fatalf("escalated below threshold")
	}
	if !Escalated(EscalateAt) || !Escalated(EscalateAt+3) {
		t.Fatalf("not escalated at or above threshold")
	}
}

func TestMatchWatchPhrase(t *testing.T) {
	phrases := []string{"zebra", "apple pie"}
	got, ok := MatchWatchPhrase("I love APPLE PIE a lot", phrases)
	if !ok || got != "apple pie" {
		t.Fatalf("got (%q, %v)", got, ok)
	}
	if _, ok := MatchWatchPhrase("nothing to see", phrases); ok {
		t.Fatalf("false positive")
	}
}

func TestMatchWatchPhraseDeterministic(t *testing.T) {
	// Both phrases match; the sorted-first one must win regardless of the
	// order the slice arrives in.
	a, _ := MatchWatchPhrase("alpha beta", []string{"beta", "alpha"})
	b, _ := MatchWatchPhrase("alpha beta", []string{"alpha", "beta"})
	if a != b || a != "alpha" {
		t.Fatalf("match not deterministic: %q vs %q", a, b)
	}
}

func TestMatchWatchPhraseEmptyConfig(t *testing.T) {
	if _, ok := MatchWatchPhrase("anything", nil); ok {
		t.Fatalf("matched with no phrases configured")
	}
	if _, ok := MatchWatchPhrase("anything", []string{"  "}); ok {
		t.Fatalf("blank phrase matched")
	}
}
