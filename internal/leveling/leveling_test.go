package leveling

import "testing"

func TestRequiredXP(t *testing.T) {
	cases := []struct {
		level, want int
	}{
		{1, 100},
		{2, 200},
		{50, 5000},
		{99, 9900},
	}
	for _, c := range cases {
		if got := RequiredXP(c.level); got != c.want {
			t.Fatalf("RequiredXP(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestGrantXPMultiLevel(t *testing.T) {
	rec := NewRecord()
	leveled, newLevel := GrantXP(&rec, 250)
	if !leveled {
		t.Fatalf("expected level up")
	}
	if newLevel != 2 || rec.Level != 2 {
		t.Fatalf("level = %d, want 2", rec.Level)
	}
	// 250 XP at level 1 crosses 100 (level 2), leaving 150 toward 200.
	if rec.XP != 150 {
		t.Fatalf("xp = %d, want 150", rec.XP)
	}
}

func TestGrantXPNoLevelUp(t *testing.T) {
	rec := NewRecord()
	leveled, _ := GrantXP(&rec, 40)
	if leveled {
		t.Fatalf("unexpected level up")
	}
	if rec.XP != 40 || rec.Level != 1 {
		t.Fatalf("got xp=%d level=%d", rec.XP, rec.Level)
	}
}

func TestGrantXPIgnoresNonPositive(t *testing.T) {
	rec := NewRecord()
	GrantXP(&rec, 40)
	before := rec
	GrantXP(&rec, 0)
	GrantXP(&rec, -10)
	if rec != before {
		t.Fatalf("record changed on non-positive grant: %+v", rec)
	}
}

func TestGrantXPCapsAtMaxLevel(t *testing.T) {
	rec := Record{XP: 0, Level: MaxLevel}
	leveled, _ := GrantXP(&rec, 1_000_000)
	if leveled {
		t.Fatalf("leveled past cap")
	}
	if rec.Level != MaxLevel {
		t.Fatalf("level = %d, want %d", rec.Level, MaxLevel)
	}
	// XP keeps accumulating at the cap; it is spent on prestige.
	if rec.XP != 1_000_000 {
		t.Fatalf("xp = %d, want 1000000", rec.XP)
	}
}

func TestAddPrestige(t *testing.T) {
	rec := Record{XP: 12345, Level: MaxLevel, Prestige: 2}
	AddPrestige(&rec)
	if rec.Prestige != 3 || rec.Level != 1 || rec.XP != 0 {
		t.Fatalf("after prestige: %+v", rec)
	}
}

func TestRankOrdering(t *testing.T) {
	entries := []Entry{
		{UserID: "a", Record: Record{XP: 10, Level: 5, Prestige: 0}},
		{UserID: "b", Record: Record{XP: 0, Level: 1, Prestige: 1}},
		{UserID: "c", Record: Record{XP: 50, Level: 5, Prestige: 0}},
		{UserID: "d", Record: Record{XP: 50, Level: 5, Prestige: 0}},
	}
	ranked := Rank(entries)
	want := []string{"b", "c", "d", "a"}
	for n, id := range want {
		if ranked[n].UserID != id {
			t.Fatalf("rank %d = %s, want %s", n, ranked[n].UserID, id)
		}
	}
}

func TestEmojiForLevelMilestones(t *testing.T) {
	if EmojiForLevel(10) == EmojiForLevel(100) {
		t.Fatalf("milestones 10 and 100 share an emoji")
	}
	// Non-milestone levels use the emoji of the last milestone reached.
	if EmojiForLevel(15) != EmojiForLevel(10) {
		t.Fatalf("level 15 should reuse the level 10 emoji")
	}
}
