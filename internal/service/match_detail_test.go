package service

import (
	"context"
	"dota-tracker/internal/api"
	"dota-tracker/internal/cache"
	"dota-tracker/internal/config"
	"dota-tracker/internal/domain"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func sampleDetail() *api.MatchDetailResponse {
	account := int64(86745912)
	return &api.MatchDetailResponse{
		MatchID:    7000000001,
		RadiantWin: false,
		Duration:   2400,
		Players: []api.MatchDetailPlayer{
			{AccountID: &account, PlayerSlot: 0, HeroID: 74, Kills: 4},
			{PlayerSlot: 128, HeroID: 1, Kills: 11},
		},
	}
}

func TestGetMatchDetail(t *testing.T) {
	up := &fakeUpstream{detail: sampleDetail()}
	c := cache.NewMemoryCache()
	svc := NewMatchDetailService(up, c, &config.Config{}, zerolog.Nop())
	ctx := context.Background()

	d, err := svc.GetMatch(ctx, "7000000001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.MatchID != 7000000001 || len(d.Players) != 2 {
		t.Fatalf("unexpected detail %+v", d)
	}
	if d.Players[0].Result != domain.OutcomeLoss || d.Players[1].Result != domain.OutcomeWin {
		t.Fatalf("unexpected per-player results")
	}

	if _, err := svc.GetMatch(ctx, "7000000001"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if _, _, details := up.calls(); details != 1 {
		t.Fatalf("expected one upstream call, got %d", details)
	}
}

func TestGetMatchDetailInvalidID(t *testing.T) {
	up := &fakeUpstream{detail: sampleDetail()}
	svc := NewMatchDetailService(up, cache.NewMemoryCache(), &config.Config{}, zerolog.Nop())

	for _, id := range []string{"", "abc", "0", "-5", "12a", "+5", "05", "07000000001", " 42", "99999999999999999999"} {
		if _, err := svc.GetMatch(context.Background(), id); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("id %q: expected ErrInvalidRequest, got %v", id, err)
		}
	}
	if _, _, details := up.calls(); details != 0 {
		t.Fatalf("expected no upstream calls, got %d", details)
	}
}

func TestGetMatchDetailFailureNotCached(t *testing.T) {
	up := &fakeUpstream{detailErr: domain.ErrUpstreamRejected}
	c := cache.NewMemoryCache()
	svc := NewMatchDetailService(up, c, &config.Config{}, zerolog.Nop())

	if _, err := svc.GetMatch(context.Background(), "42"); !errors.Is(err, domain.ErrUpstreamRejected) {
		t.Fatalf("expected ErrUpstreamRejected, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected nothing cached")
	}
}
