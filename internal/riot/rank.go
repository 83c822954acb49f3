package riot

// TierRank maps the ten tiers to 1..10 for scoring and comparison. Unknown
// tiers map to 0 so they sort below everything real.
var TierRank = map[string]int{
	"IRON":        1,
	"BRONZE":      2,
	"SILVER":      3,
	"GOLD":        4,
	"PLATINUM":    5,
	"EMERALD":     6,
	"DIAMOND":     7,
	"MASTER":      8,
	"GRANDMASTER": 9,
	"CHALLENGER":  10,
}

// DivisionRank maps divisions IV..I to 1..4. Apex tiers carry no division
// and map to 0, as does anything unrecognized.
var DivisionRank = map[string]int{
	"IV":  1,
	"III": 2,
	"II":  3,
	"I":   4,
}
