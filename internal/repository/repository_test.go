package repository

import (
	"context"
	"database/sql"
	"dota-tracker/internal/database"
	"dota-tracker/internal/db"
	"dota-tracker/internal/domain"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func newRepos(t *testing.T) (*MatchRepository, *PlayerRepository) {
	sqlDB := openTestDB(t)
	q := db.New(sqlDB)
	return NewMatchRepository(q, zerolog.Nop()), NewPlayerRepository(q, zerolog.Nop())
}

func sampleMatch(id int64, kills int, playedAt time.Time) *domain.Match {
	return &domain.Match{
		MatchID:  id,
		PlayerID: "76561198047011640",
		HeroID:   74,
		Duration: 2400,
		Kills:    kills,
		Deaths:   3,
		Assists:  9,
		Result:   domain.OutcomeWin,
		PlayedAt: playedAt,
	}
}

func TestUpsertMatchIsIdempotent(t *testing.T) {
	matches, _ := newRepos(t)
	ctx := context.Background()
	playedAt := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	if err := matches.UpsertMatch(ctx, sampleMatch(7000000001, 5, playedAt)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := sampleMatch(7000000001, 12, playedAt)
	second.Result = domain.OutcomeLoss
	if err := matches.UpsertMatch(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	n, err := matches.CountByPlayer(ctx, "76561198047011640")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 stored match, got %d", n)
	}

	got, err := matches.GetByID(ctx, 7000000001)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Kills != 12 || got.Result != domain.OutcomeLoss {
		t.Fatalf("expected second write to win, got kills=%d result=%s", got.Kills, got.Result)
	}
	if !got.PlayedAt.Equal(playedAt) {
		t.Fatalf("played_at mismatch: %s vs %s", got.PlayedAt, playedAt)
	}
}

func TestUpsertMatchRejectsInvalid(t *testing.T) {
	matches, _ := newRepos(t)
	ctx := context.Background()

	bad := []*domain.Match{
		nil,
		{MatchID: 0, PlayerID: "76561198047011640", Result: domain.OutcomeWin},
		{MatchID: 1, PlayerID: "", Result: domain.OutcomeWin},
		{MatchID: 1, PlayerID: "76561198047011640", Kills: -1, Result: domain.OutcomeWin},
		{MatchID: 1, PlayerID: "76561198047011640", Result: "draw"},
	}
	for i, m := range bad {
		if err := matches.UpsertMatch(ctx, m); !errors.Is(err, domain.ErrStore) {
			t.Fatalf("case %d: expected ErrStore, got %v", i, err)
		}
	}
}

func TestListByPlayerNewestFirst(t *testing.T) {
	matches, _ := newRepos(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := matches.UpsertMatch(ctx, sampleMatch(int64(100+i), i, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	other := sampleMatch(999, 1, base)
	other.PlayerID = "76561198000000000"
	_ = matches.UpsertMatch(ctx, other)

	page, err := matches.ListByPlayer(ctx, "76561198047011640", 2, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page))
	}
	if page[0].MatchID != 103 || page[1].MatchID != 102 {
		t.Fatalf("unexpected order: %d, %d", page[0].MatchID, page[1].MatchID)
	}
}

// A match has a single owner row; a later upsert from another player's
// history takes it over.
func TestUpsertMatchSharedBetweenPlayers(t *testing.T) {
	matches, _ := newRepos(t)
	ctx := context.Background()
	played := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := sampleMatch(500, 3, played)
	if err := matches.UpsertMatch(ctx, first); err != nil {
		t.Fatalf("upsert first: %v", err)
	}
	second := sampleMatch(500, 7, played)
	second.PlayerID = "76561198000000000"
	if err := matches.UpsertMatch(ctx, second); err != nil {
		t.Fatalf("upsert second: %v", err)
	}

	if n, _ := matches.CountByPlayer(ctx, "76561198047011640"); n != 0 {
		t.Fatalf("expected first owner to lose the row, got %d", n)
	}
	got, err := matches.GetByID(ctx, 500)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PlayerID != "76561198000000000" || got.Kills != 7 {
		t.Fatalf("expected the latest write to win, got %+v", got)
	}
}

func TestGetMatchNotFound(t *testing.T) {
	matches, _ := newRepos(t)
	if _, err := matches.GetByID(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayerUpsertAndFind(t *testing.T) {
	_, players := newRepos(t)
	ctx := context.Background()

	if _, err := players.GetBySteamID(ctx, "76561198047011640"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before insert, got %v", err)
	}

	tier := 54
	err := players.Upsert(ctx, &domain.Player{
		SteamID:     "76561198047011640",
		DisplayName: "first",
		Avatar:      "https://avatars.example/a.jpg",
		RankTier:    &tier,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	first, err := players.GetBySteamID(ctx, "76561198047011640")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	players.now = func() time.Time { return time.Now().Add(time.Hour) }
	err = players.Upsert(ctx, &domain.Player{
		SteamID:     "76561198047011640",
		DisplayName: "second",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := players.GetBySteamID(ctx, "76561198047011640")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DisplayName != "second" || got.Avatar != "" {
		t.Fatalf("expected latest write, got %+v", got)
	}
	if got.RankTier == nil || *got.RankTier != 54 {
		t.Fatalf("rank tier should survive an update without one, got %v", got.RankTier)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at changed on update: %s -> %s", first.CreatedAt, got.CreatedAt)
	}
	if !got.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updated_at not advanced")
	}
	if got.AccountID != "86745912" {
		t.Fatalf("expected derived account id, got %q", got.AccountID)
	}
}

func TestPlayerUpsertRejectsBadSteamID(t *testing.T) {
	_, players := newRepos(t)
	err := players.Upsert(context.Background(), &domain.Player{SteamID: "123", DisplayName: "x"})
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestMigrationsApplied(t *testing.T) {
	sqlDB := openTestDB(t)

	var mode string
	if err := sqlDB.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal, got %q", mode)
	}

	for _, table := range []string{"users", "matches"} {
		var name string
		err := sqlDB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
