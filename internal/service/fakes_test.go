package service

import (
	"context"
	"dota-tracker/internal/api"
	"dota-tracker/internal/domain"
	"errors"
	"sort"
	"sync"
	"time"
)

const testSteamID = "76561198047011640"

type fakeUpstream struct {
	mu           sync.Mutex
	matchCalls   int
	profileCalls int
	detailCalls  int
	lastAccount  string

	matches    []api.RawMatch
	matchErr   error
	profile    *api.PlayerResponse
	profileErr error
	detail     *api.MatchDetailResponse
	detailErr  error

	// when set, FetchMatchList signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeUpstream) FetchMatchList(ctx context.Context, accountID string, limit int) ([]api.RawMatch, error) {
	f.mu.Lock()
	f.matchCalls++
	f.lastAccount = accountID
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	if f.matchErr != nil {
		return nil, f.matchErr
	}
	return f.matches, nil
}

func (f *fakeUpstream) FetchPlayerProfile(ctx context.Context, accountID string) (*api.PlayerResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	f.lastAccount = accountID
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeUpstream) FetchMatchDetail(ctx context.Context, matchID string) (*api.MatchDetailResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.detail, nil
}

func (f *fakeUpstream) calls() (matches, profiles, details int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.matchCalls, f.profileCalls, f.detailCalls
}

type fakeMatchStore struct {
	mu      sync.Mutex
	matches map[int64]domain.Match
	failOn  map[int64]bool
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{matches: map[int64]domain.Match{}, failOn: map[int64]bool{}}
}

func (s *fakeMatchStore) UpsertMatch(ctx context.Context, m *domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[m.MatchID] {
		return domain.ErrStore
	}
	s.matches[m.MatchID] = *m
	return nil
}

func (s *fakeMatchStore) ListByPlayer(ctx context.Context, playerID string, limit, offset int) ([]domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Match
	for _, m := range s.matches {
		if m.PlayerID == playerID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlayedAt.Equal(out[j].PlayedAt) {
			return out[i].PlayedAt.After(out[j].PlayedAt)
		}
		return out[i].MatchID > out[j].MatchID
	})
	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}

func (s *fakeMatchStore) CountByPlayer(ctx context.Context, playerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.matches {
		if m.PlayerID == playerID {
			n++
		}
	}
	return n, nil
}

func (s *fakeMatchStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

type fakeProfileStore struct {
	mu        sync.Mutex
	players   map[string]domain.Player
	upsertErr error
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{players: map[string]domain.Player{}}
}

func (s *fakeProfileStore) Upsert(ctx context.Context, p *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	now := time.Now().UTC()
	stored := *p
	if existing, ok := s.players[p.SteamID]; ok {
		stored.CreatedAt = existing.CreatedAt
		if stored.RankTier == nil {
			stored.RankTier = existing.RankTier
		}
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.players[p.SteamID] = stored
	return nil
}

func (s *fakeProfileStore) GetBySteamID(ctx context.Context, steamID string) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[steamID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

var errBoom = errors.New("boom")

// rawMatches builds n records, newest first, alternating wins and losses.
func rawMatches(n int) []api.RawMatch {
	start := int64(1735689600)
	out := make([]api.RawMatch, n)
	for i := range out {
		id := int64(7000000000 + n - i)
		win := i%2 == 0
		out[i] = api.RawMatch{
			MatchID:    &id,
			PlayerSlot: 1,
			RadiantWin: &win,
			Duration:   1800 + i,
			HeroID:     1 + i%120,
			StartTime:  start - int64(i)*3600,
			Kills:      i % 15,
			Deaths:     1 + i%9,
			Assists:    i % 20,
		}
	}
	return out
}
