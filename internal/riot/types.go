package riot

// SummonerResponse represents the identity record from
// /lol/summoner/v4/summoners/by-name.
type SummonerResponse struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	Name          string `json:"name"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

// LeagueEntryResponse represents one ranked standing from
// /lol/league/v4/entries/by-summoner.
type LeagueEntryResponse struct {
	LeagueID     string `json:"leagueId"`
	SummonerID   string `json:"summonerId"`
	QueueType    string `json:"queueType"` // RANKED_SOLO_5x5, RANKED_FLEX_SR
	Tier         string `json:"tier"`      // IRON .. CHALLENGER
	Rank         string `json:"rank"`      // I, II, III, IV
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// MasteryEntryResponse represents one champion mastery from
// /lol/champion-mastery/v4/champion-masteries/by-summoner.
type MasteryEntryResponse struct {
	ChampionID     int   `json:"championId"`
	ChampionLevel  int   `json:"championLevel"`
	ChampionPoints int   `json:"championPoints"`
	LastPlayTime   int64 `json:"lastPlayTime"`
}

// QueueSolo is the ranked queue the leaderboard tracks.
const QueueSolo = "RANKED_SOLO_5x5"

// LookupResult bundles the three resources of one successful lookup. All
// three are present or the lookup failed as a whole.
type LookupResult struct {
	Identity  *SummonerResponse
	Standings []LeagueEntryResponse
	Masteries []MasteryEntryResponse
}

// SoloQueueEntry returns the RANKED_SOLO_5x5 standing, if any.
func (r *LookupResult) SoloQueueEntry() (LeagueEntryResponse, bool) {
	return SoloQueueEntry(r.Standings)
}

// SoloQueueEntry returns the first RANKED_SOLO_5x5 entry in standings.
func SoloQueueEntry(standings []LeagueEntryResponse) (LeagueEntryResponse, bool) {
	for _, e := range standings {
		if e.QueueType == QueueSolo {
			return e, true
		}
	}
	return LeagueEntryResponse{}, false
}
