package api

import (
	"dota-tracker/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
)

type PlayerResponse struct {
	Profile  *PlayerProfile `json:"profile"`
	RankTier *int           `json:"rank_tier"`
}

type PlayerProfile struct {
	AccountID   int64  `json:"account_id"`
	PersonaName string `json:"personaname"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	AvatarFull  string `json:"avatarfull"`
	ProfileURL  string `json:"profileurl"`
	SteamID     string `json:"steamid"`
}

// Player maps the provider profile onto a domain player keyed by steamID.
func (r *PlayerResponse) Player(steamID string) domain.Player {
	p := domain.Player{
		SteamID:  steamID,
		RankTier: r.RankTier,
	}
	if r.Profile != nil {
		p.DisplayName = r.Profile.PersonaName
		if p.DisplayName == "" {
			p.DisplayName = fmt.Sprintf("Player %d", r.Profile.AccountID)
		}
		p.Avatar = r.Profile.AvatarFull
		if p.Avatar == "" {
			p.Avatar = r.Profile.Avatar
		}
	}
	return p
}

// RawMatch is one entry of /players/{id}/matches.
type RawMatch struct {
	MatchID    *int64 `json:"match_id"`
	PlayerSlot int    `json:"player_slot"`
	RadiantWin *bool  `json:"radiant_win"`
	Duration   int    `json:"duration"`
	GameMode   int    `json:"game_mode"`
	LobbyType  int    `json:"lobby_type"`
	HeroID     int    `json:"hero_id"`
	StartTime  int64  `json:"start_time"`
	Kills      int    `json:"kills"`
	Deaths     int    `json:"deaths"`
	Assists    int    `json:"assists"`
}

func (m RawMatch) validate() error {
	if m.MatchID == nil || *m.MatchID <= 0 {
		return errors.New("missing match_id")
	}
	if m.Kills < 0 || m.Deaths < 0 || m.Assists < 0 || m.Duration < 0 {
		return fmt.Errorf("match %d: negative stat", *m.MatchID)
	}
	return nil
}

// Summary converts a validated record into a list row with its outcome.
func (m RawMatch) Summary() domain.MatchSummary {
	radiantWin := m.RadiantWin != nil && *m.RadiantWin
	return domain.MatchSummary{
		MatchID:    *m.MatchID,
		HeroID:     m.HeroID,
		Duration:   m.Duration,
		Kills:      m.Kills,
		Deaths:     m.Deaths,
		Assists:    m.Assists,
		RadiantWin: radiantWin,
		PlayerSlot: m.PlayerSlot,
		StartTime:  m.StartTime,
		GameMode:   m.GameMode,
		LobbyType:  m.LobbyType,
		Result:     domain.DeriveOutcome(radiantWin, m.PlayerSlot),
	}
}

func Summaries(raw []RawMatch) []domain.MatchSummary {
	out := make([]domain.MatchSummary, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.Summary())
	}
	return out
}

type MatchDetailResponse struct {
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
	AccountID   *int64 `json:"account_id"`
	PlayerSlot  int    `json:"player_slot"`
	HeroID      int    `json:"hero_id"`
	PersonaName string `json:"personaname"`
	Kills       int    `json:"kills"`
	Deaths      int    `json:"deaths"`
	Assists     int    `json:"assists"`
	LastHits    int    `json:"last_hits"`
	Denies      int    `json:"denies"`
	GoldPerMin  int    `json:"gold_per_min"`
	XPPerMin    int    `json:"xp_per_min"`
	NetWorth    int    `json:"net_worth"`
	HeroDamage  int    `json:"hero_damage"`
	TowerDamage int    `json:"tower_damage"`
	HeroHealing int    `json:"hero_healing"`
	Level       int    `json:"level"`
	Item0       int    `json:"item_0"`
	Item1       int    `json:"item_1"`
	Item2       int    `json:"item_2"`
	Item3       int    `json:"item_3"`
	Item4       int    `json:"item_4"`
	Item5       int    `json:"item_5"`
}

func (r *MatchDetailResponse) Detail() domain.MatchDetail {
	d := domain.MatchDetail{
		MatchID:      r.MatchID,
		RadiantWin:   r.RadiantWin,
		Duration:     r.Duration,
		StartTime:    r.StartTime,
		RadiantScore: r.RadiantScore,
		DireScore:    r.DireScore,
		GameMode:     r.GameMode,
		LobbyType:    r.LobbyType,
		Players:      make([]domain.MatchDetailPlayer, 0, len(r.Players)),
	}
	for _, p := range r.Players {
		d.Players = append(d.Players, domain.MatchDetailPlayer{
			AccountID:   p.AccountID,
			PlayerSlot:  p.PlayerSlot,
			HeroID:      p.HeroID,
			PersonaName: p.PersonaName,
			Kills:       p.Kills,
			Deaths:      p.Deaths,
			Assists:     p.Assists,
			LastHits:    p.LastHits,
			Denies:      p.Denies,
			GoldPerMin:  p.GoldPerMin,
			XPPerMin:    p.XPPerMin,
			NetWorth:    p.NetWorth,
			HeroDamage:  p.HeroDamage,
			TowerDamage: p.TowerDamage,
			HeroHealing: p.HeroHealing,
			Level:       p.Level,
			Item0:       p.Item0,
			Item1:       p.Item1,
			Item2:       p.Item2,
			Item3:       p.Item3,
			Item4:       p.Item4,
			Item5:       p.Item5,
			Result:      domain.DeriveOutcome(r.RadiantWin, p.PlayerSlot),
		})
	}
	return d
}

func decodeObject[T any](body []byte) (*T, error) {
	if firstByte(body) != '{' {
		return nil, errors.New("expected JSON object")
	}
	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func decodeArray[T any](body []byte) ([]T, error) {
	if firstByte(body) != '[' {
		return nil, errors.New("expected JSON array")
	}
	var result []T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return result, nil
}
