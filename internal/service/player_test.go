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

func sampleProfile() *api.PlayerResponse {
	tier := 75
	return &api.PlayerResponse{
		Profile: &api.PlayerProfile{
			AccountID:   86745912,
			PersonaName: "Miracle",
			AvatarFull:  "https://avatars.example/full.jpg",
		},
		RankTier: &tier,
	}
}

func newPlayerService(up *fakeUpstream, store *fakeProfileStore) (*PlayerService, *cache.MemoryCache) {
	c := cache.NewMemoryCache()
	return NewPlayerService(up, store, c, &config.Config{}, zerolog.Nop()), c
}

func TestSearchByAccountID(t *testing.T) {
	up := &fakeUpstream{profile: sampleProfile()}
	store := newFakeProfileStore()
	svc, _ := newPlayerService(up, store)
	ctx := context.Background()

	results, err := svc.Search(ctx, "86745912")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].SteamID != testSteamID || results[0].DisplayName != "Miracle" {
		t.Fatalf("unexpected results %+v", results)
	}
	if _, err := store.GetBySteamID(ctx, testSteamID); err != nil {
		t.Fatalf("expected the profile to be stored: %v", err)
	}

	// normalized query hits the same cache entry
	if _, err := svc.Search(ctx, "  86745912 "); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if _, profiles, _ := up.calls(); profiles != 1 {
		t.Fatalf("expected a single upstream lookup, got %d", profiles)
	}
}

func TestSearchBySteamID(t *testing.T) {
	up := &fakeUpstream{profile: sampleProfile()}
	svc, _ := newPlayerService(up, newFakeProfileStore())

	results, err := svc.Search(context.Background(), testSteamID)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results[0].AccountID != "86745912" {
		t.Fatalf("expected account id to be derived, got %q", results[0].AccountID)
	}
}

func TestSearchHighAccountIDs(t *testing.T) {
	cases := map[string]string{
		"2039734272": "76561200000000000",
		"4294967295": "76561202255233023",
	}
	for account, steamID := range cases {
		up := &fakeUpstream{profile: sampleProfile()}
		svc, _ := newPlayerService(up, newFakeProfileStore())

		results, err := svc.Search(context.Background(), account)
		if err != nil {
			t.Fatalf("search %s: %v", account, err)
		}
		if results[0].SteamID != steamID || up.lastAccount != account {
			t.Fatalf("search %s: got steam id %s, upstream account %s", account, results[0].SteamID, up.lastAccount)
		}
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	up := &fakeUpstream{}
	svc, _ := newPlayerService(up, newFakeProfileStore())

	if _, err := svc.Search(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, profiles, _ := up.calls(); profiles != 0 {
		t.Fatalf("expected no upstream calls")
	}
}

func TestSearchNotFound(t *testing.T) {
	cases := []struct {
		name  string
		query string
		err   error
	}{
		{"player name", "miracle", nil},
		{"account id overflow", "4294967296", nil},
		{"upstream not found", "86745912", domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			up := &fakeUpstream{profile: sampleProfile(), profileErr: tc.err}
			svc, c := newPlayerService(up, newFakeProfileStore())

			if _, err := svc.Search(context.Background(), tc.query); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if c.Len() != 0 {
				t.Fatalf("failed searches must not be cached")
			}
		})
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	for _, upErr := range []error{domain.ErrUpstreamUnavailable, domain.ErrUpstreamRejected, domain.ErrUpstreamMalformed} {
		up := &fakeUpstream{profile: sampleProfile(), profileErr: upErr}
		svc, c := newPlayerService(up, newFakeProfileStore())

		_, err := svc.Search(context.Background(), "86745912")
		if !errors.Is(err, upErr) || errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected %v to surface, got %v", upErr, err)
		}
		if c.Len() != 0 {
			t.Fatalf("failed searches must not be cached")
		}
	}
}

func TestSearchStoreFailure(t *testing.T) {
	up := &fakeUpstream{profile: sampleProfile()}
	store := newFakeProfileStore()
	store.upsertErr = domain.ErrStore
	svc, _ := newPlayerService(up, store)

	if _, err := svc.Search(context.Background(), "86745912"); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	store := newFakeProfileStore()
	svc, _ := newPlayerService(&fakeUpstream{}, store)
	ctx := context.Background()

	p, err := svc.CurrentUser(ctx, testSteamID)
	if err != nil || p != nil {
		t.Fatalf("expected nil user, got %+v, %v", p, err)
	}

	_ = store.Upsert(ctx, &domain.Player{SteamID: testSteamID, DisplayName: "me"})
	p, err = svc.CurrentUser(ctx, testSteamID)
	if err != nil || p == nil || p.DisplayName != "me" {
		t.Fatalf("expected stored user, got %+v, %v", p, err)
	}
}

func TestRecordLogin(t *testing.T) {
	up := &fakeUpstream{profile: sampleProfile()}
	store := newFakeProfileStore()
	svc, _ := newPlayerService(up, store)
	ctx := context.Background()

	p, err := svc.RecordLogin(ctx, testSteamID)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if p.DisplayName != "Miracle" || p.RankTier == nil || *p.RankTier != 75 {
		t.Fatalf("unexpected player %+v", p)
	}

	// a provider outage keeps the stored profile
	up.profileErr = domain.ErrUpstreamUnavailable
	p, err = svc.RecordLogin(ctx, testSteamID)
	if err != nil {
		t.Fatalf("login during outage: %v", err)
	}
	if p.DisplayName != "Miracle" {
		t.Fatalf("expected stored name to survive, got %q", p.DisplayName)
	}
}

func TestRecordLoginFirstTimeDuringOutage(t *testing.T) {
	up := &fakeUpstream{profileErr: errBoom}
	svc, _ := newPlayerService(up, newFakeProfileStore())

	p, err := svc.RecordLogin(context.Background(), testSteamID)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if p.SteamID != testSteamID || p.DisplayName != testSteamID {
		t.Fatalf("expected placeholder profile, got %+v", p)
	}
}
