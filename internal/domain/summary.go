package domain

import "math"

// Summarize computes win rate and K/D/A averages over one page of matches.
func Summarize(matches []MatchSummary) PageSummary {
	var s PageSummary
	if len(matches) == 0 {
		return s
	}

	var kills, deaths, assists int
	for _, m := range matches {
		if m.Result == OutcomeWin {
			s.Wins++
		} else {
			s.Losses++
		}
		kills += m.Kills
		deaths += m.Deaths
		assists += m.Assists
	}

	n := float64(len(matches))
	s.WinRate = round2(float64(s.Wins) / n * 100)
	s.AvgKills = round2(float64(kills) / n)
	s.AvgDeaths = round2(float64(deaths) / n)
	s.AvgAssists = round2(float64(assists) / n)
	if deaths == 0 {
		s.KDA = float64(kills + assists)
	} else {
		s.KDA = round2(float64(kills+assists) / float64(deaths))
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
