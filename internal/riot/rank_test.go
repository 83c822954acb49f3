package riot

import "testing"

func TestTierRank_Ordering(t *testing.T) {
	// Verify tier ordering is correct
	expectedOrder := []string{
		"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM",
		"EMERALD", "DIAMOND", "MASTER", "GRANDMASTER", "CHALLENGER",
	}

	for i := 0; i < len(expectedOrder)-1; i++ {
		current := expectedOrder[i]
		next := expectedOrder[i+1]
		if TierRank[current] >= TierRank[next] {
			t.Errorf("Tier order incorrect: %s (%d) should be less than %s (%d)",
				current, TierRank[current], next, TierRank[next])
		}
	}
}

func TestTierRank_Bounds(t *testing.T) {
	if TierRank["IRON"] != 1 {
		t.Errorf("IRON should rank 1, got %d", TierRank["IRON"])
	}
	if TierRank["CHALLENGER"] != 10 {
		t.Errorf("CHALLENGER should rank 10, got %d", TierRank["CHALLENGER"])
	}
	// Unknown tiers fall back to the zero value, below everything real.
	if TierRank["WOOD"] != 0 {
		t.Errorf("unknown tier should rank 0, got %d", TierRank["WOOD"])
	}
}

func TestDivisionRank_Ordering(t *testing.T) {
	// Verify division ordering (IV is lowest, I is highest)
	if DivisionRank["IV"] >= DivisionRank["III"] {
		t.Error("IV should be lower than III")
	}
	if DivisionRank["III"] >= DivisionRank["II"] {
		t.Error("III should be lower than II")
	}
	if DivisionRank["II"] >= DivisionRank["I"] {
		t.Error("II should be lower than I")
	}
	// Apex tiers carry no division at all.
	if DivisionRank[""] != 0 {
		t.Errorf("absent division should rank 0, got %d", DivisionRank[""])
	}
}

func TestSoloQueueEntry(t *testing.T) {
	standings := []LeagueEntryResponse{
		{QueueType: "RANKED_FLEX_SR", Tier: "PLATINUM", Rank: "II"},
		{QueueType: QueueSolo, Tier: "GOLD", Rank: "I"},
	}

	entry, ok := SoloQueueEntry(standings)
	if !ok {
		t.Fatal("expected a solo queue entry")
	}
	if entry.Tier != "GOLD" {
		t.Errorf("picked the wrong entry: %+v", entry)
	}

	if _, ok := SoloQueueEntry(standings[:1]); ok {
		t.Error("flex-only standings should report no solo entry")
	}
}
