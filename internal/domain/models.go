package domain

import (
	"time"
)

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// Player slots 0-127 are Radiant, 128-255 are Dire.
const DireSlotStart = 128

// DeriveOutcome returns win when the player's side won the match.
func DeriveOutcome(radiantWin bool, playerSlot int) Outcome {
	dire := playerSlot >= DireSlotStart
	if radiantWin != dire {
		return OutcomeWin
	}
	return OutcomeLoss
}

type Player struct {
	SteamID     string    `json:"steamId"`
	AccountID   string    `json:"accountId,omitempty"`
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatar"`
	RankTier    *int      `json:"rankTier,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Match struct {
	MatchID   int64     `json:"matchId"`
	PlayerID  string    `json:"playerId"`
	HeroID    int       `json:"heroId"`
	Duration  int       `json:"duration"`
	Kills     int       `json:"kills"`
	Deaths    int       `json:"deaths"`
	Assists   int       `json:"assists"`
	Result    Outcome   `json:"result"`
	PlayedAt  time.Time `json:"playedAt"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// MatchSummary is one row of a player's match list as served to clients.
// Field names follow the provider's wire format the web client reads.
type MatchSummary struct {
	MatchID    int64   `json:"match_id"`
	HeroID     int     `json:"hero_id"`
	Duration   int     `json:"duration"`
	Kills      int     `json:"kills"`
	Deaths     int     `json:"deaths"`
	Assists    int     `json:"assists"`
	RadiantWin bool    `json:"radiant_win"`
	PlayerSlot int     `json:"player_slot"`
	StartTime  int64   `json:"start_time"`
	GameMode   int     `json:"game_mode"`
	LobbyType  int     `json:"lobby_type"`
	Result     Outcome `json:"result"`
}

// Record converts the summary into the stored form owned by steamID.
func (s MatchSummary) Record(steamID string) Match {
	return Match{
		MatchID:  s.MatchID,
		PlayerID: steamID,
		HeroID:   s.HeroID,
		Duration: s.Duration,
		Kills:    s.Kills,
		Deaths:   s.Deaths,
		Assists:  s.Assists,
		Result:   s.Result,
		PlayedAt: time.Unix(s.StartTime, 0).UTC(),
	}
}

// Summary rebuilds a list row from a stored record. Side and slot are not
// stored, so they are synthesized to agree with the stored result.
func (m Match) Summary() MatchSummary {
	return MatchSummary{
		MatchID:    m.MatchID,
		HeroID:     m.HeroID,
		Duration:   m.Duration,
		Kills:      m.Kills,
		Deaths:     m.Deaths,
		Assists:    m.Assists,
		RadiantWin: m.Result == OutcomeWin,
		PlayerSlot: 0,
		StartTime:  m.PlayedAt.Unix(),
		Result:     m.Result,
	}
}

type MatchPage struct {
	Matches      []MatchSummary `json:"matches"`
	TotalPages   int            `json:"totalPages"`
	CurrentPage  int            `json:"currentPage"`
	TotalMatches int            `json:"totalMatches"`
	Summary      PageSummary    `json:"summary"`
	Source       string         `json:"source,omitempty"` // "" or "store"
}

type PageSummary struct {
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"winRate"`
	AvgKills   float64 `json:"avgKills"`
	AvgDeaths  float64 `json:"avgDeaths"`
	AvgAssists float64 `json:"avgAssists"`
	KDA        float64 `json:"kda"`
}

// MatchDetail is the full per-player breakdown of one match. Cached, never stored.
type MatchDetail struct {
	MatchID      int64               `json:"match_id"`
	RadiantWin   bool                `json:"radiant_win"`
	Duration     int                 `json:"duration"`
	StartTime    int64               `json:"start_time"`
	RadiantScore int                 `json:"radiant_score"`
	DireScore    int                 `json:"dire_score"`
	GameMode     int                 `json:"game_mode"`
	LobbyType    int                 `json:"lobby_type"`
	Players      []MatchDetailPlayer `json:"players"`
}

type MatchDetailPlayer struct {
	AccountID   *int64  `json:"account_id"`
	PlayerSlot  int     `json:"player_slot"`
	HeroID      int     `json:"hero_id"`
	PersonaName string  `json:"personaname,omitempty"`
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	Assists     int     `json:"assists"`
	LastHits    int     `json:"last_hits"`
	Denies      int     `json:"denies"`
	GoldPerMin  int     `json:"gold_per_min"`
	XPPerMin    int     `json:"xp_per_min"`
	NetWorth    int     `json:"net_worth"`
	HeroDamage  int     `json:"hero_damage"`
	TowerDamage int     `json:"tower_damage"`
	HeroHealing int     `json:"hero_healing"`
	Level       int     `json:"level"`
	Item0       int     `json:"item_0"`
	Item1       int     `json:"item_1"`
	Item2       int     `json:"item_2"`
	Item3       int     `json:"item_3"`
	Item4       int     `json:"item_4"`
	Item5       int     `json:"item_5"`
	Result      Outcome `json:"result"`
}
