package progress

import (
	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/fact"
)

// rule thresholds
const (
	allSpeciesCount      = 15
	allThreatsCount      = 8
	connectionsBestScore = 600
	flawlessScore        = 1000
	marathonGames        = 20
	frequentVisits       = 10
)

var memoryAchievements = map[fact.Difficulty]string{
	fact.Easy:   achievement.MemoryEasy,
	fact.Medium: achievement.MemoryMedium,
	fact.Hard:   achievement.MemoryHard,
}

// Evaluate returns every achievement the just-recorded fact qualifies the user for.
// stats must already include f. It has no side effects; already-granted ids are filtered by the ledger.
func Evaluate(f fact.Fact, stats fact.Stats) []string {
	ids := make([]string, 0, 3)

	switch f := f.(type) {
	case fact.SpeciesViewed:
		n := stats.SpeciesCount()
		if n == 1 {
			ids = append(ids, achievement.FirstSpecies)
		}
		if n >= allSpeciesCount {
			ids = append(ids, achievement.AllSpecies)
		}
	case fact.ThreatViewed:
		if stats.ThreatCount() >= allThreatsCount {
			ids = append(ids, achievement.AllThreats)
		}
	case fact.GameResult:
		switch f.Game {
		case fact.GameMemory:
			if id, ok := memoryAchievements[f.Difficulty]; ok && stats.GamesCompleted(fact.GameMemory, f.Difficulty) == 1 {
				ids = append(ids, id)
			}
		case fact.GameConnections:
			if f.Score >= connectionsBestScore {
				ids = append(ids, achievement.ConnectionsPerfect)
			}
		}
		if f.Score >= flawlessScore {
			ids = append(ids, achievement.FlawlessGame)
		}
		if stats.TotalGames() >= marathonGames {
			ids = append(ids, achievement.Marathoner)
		}
	}
	return ids
}

// EvaluateVisit returns the achievements earned by reaching the given visit count (after the login increment).
func EvaluateVisit(visits int) []string {
	if visits >= frequentVisits {
		return []string{achievement.FrequentVisitor}
	}
	return []string{}
}
