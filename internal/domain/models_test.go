package domain

import "testing"

func TestDeriveOutcome(t *testing.T) {
	cases := []struct {
		radiantWin bool
		slot       int
		want       Outcome
	}{
		{true, 5, OutcomeWin},
		{true, 130, OutcomeLoss},
		{false, 0, OutcomeLoss},
		{false, 132, OutcomeWin},
		{true, 127, OutcomeWin},
		{false, 128, OutcomeWin},
	}
	for _, tc := range cases {
		if got := DeriveOutcome(tc.radiantWin, tc.slot); got != tc.want {
			t.Fatalf("DeriveOutcome(%v, %d) = %s; want %s", tc.radiantWin, tc.slot, got, tc.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	matches := []MatchSummary{
		{Kills: 10, Deaths: 2, Assists: 5, Result: OutcomeWin},
		{Kills: 4, Deaths: 6, Assists: 8, Result: OutcomeLoss},
		{Kills: 7, Deaths: 1, Assists: 11, Result: OutcomeWin},
		{Kills: 1, Deaths: 7, Assists: 0, Result: OutcomeLoss},
	}

	s := Summarize(matches)
	if s.Wins != 2 || s.Losses != 2 {
		t.Fatalf("expected 2/2, got %d/%d", s.Wins, s.Losses)
	}
	if s.WinRate != 50 {
		t.Fatalf("expected win rate 50, got %v", s.WinRate)
	}
	if s.AvgKills != 5.5 {
		t.Fatalf("expected avg kills 5.5, got %v", s.AvgKills)
	}
	if s.AvgDeaths != 4 {
		t.Fatalf("expected avg deaths 4, got %v", s.AvgDeaths)
	}
	if s.KDA != 2.88 {
		t.Fatalf("expected kda 2.88, got %v", s.KDA)
	}
}

func TestSummarizeNoDeaths(t *testing.T) {
	s := Summarize([]MatchSummary{{Kills: 3, Assists: 4, Result: OutcomeWin}})
	if s.KDA != 7 {
		t.Fatalf("expected kda 7, got %v", s.KDA)
	}
	if s.WinRate != 100 {
		t.Fatalf("expected win rate 100, got %v", s.WinRate)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if s := Summarize(nil); s != (PageSummary{}) {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestSummaryRecordRoundTrip(t *testing.T) {
	s := MatchSummary{
		MatchID:    7000000001,
		HeroID:     74,
		Duration:   2100,
		Kills:      9,
		Deaths:     2,
		Assists:    14,
		RadiantWin: false,
		PlayerSlot: 131,
		StartTime:  1735689600,
		Result:     DeriveOutcome(false, 131),
	}

	rec := s.Record("76561198047011640")
	if rec.PlayerID != "76561198047011640" || rec.Result != OutcomeWin {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.PlayedAt.Unix() != 1735689600 {
		t.Fatalf("played_at not derived from start_time: %s", rec.PlayedAt)
	}

	back := rec.Summary()
	if back.MatchID != s.MatchID || back.Kills != s.Kills || back.StartTime != s.StartTime {
		t.Fatalf("summary lost fields: %+v", back)
	}
	if DeriveOutcome(back.RadiantWin, back.PlayerSlot) != back.Result {
		t.Fatalf("synthesized side disagrees with stored result")
	}
}
