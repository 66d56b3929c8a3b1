package progress

import (
	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/fact"
	"github.com/vitor518/Mangues/core/user"
)

type (
	// Profile is the client-facing view of a user. Every number defaults to 0 and every list to [].
	Profile struct {
		user.User
		Achievements []achievement.Granted `json:"conquistas"`
		Statistics   Statistics            `json:"estatisticas"`
	}

	Statistics struct {
		SpeciesViewed []int               `json:"especies_visualizadas"`
		ThreatsViewed []int               `json:"ameacas_visualizadas"`
		ThreatActions []fact.ThreatAction `json:"acoes_ameacas"`
		Games         GamesStats          `json:"jogos"`
	}

	GamesStats struct {
		Memory      MemoryStats `json:"memoria"`
		Connections GameStats   `json:"conexoes"`
	}

	MemoryStats struct {
		Easy   GameStats `json:"facil"`
		Medium GameStats `json:"medio"`
		Hard   GameStats `json:"dificil"`
	}

	GameStats struct {
		BestScore int `json:"melhor_pontuacao"`
		Completed int `json:"jogos_completos"`
	}
)

func newProfile(usr user.User, granted []achievement.Granted, stats fact.Stats) Profile {
	if granted == nil {
		granted = []achievement.Granted{}
	}
	memory := func(d fact.Difficulty) GameStats {
		return GameStats{
			BestScore: stats.BestScore(fact.GameMemory, d),
			Completed: stats.GamesCompleted(fact.GameMemory, d),
		}
	}
	return Profile{
		User:         usr,
		Achievements: granted,
		Statistics: Statistics{
			SpeciesViewed: stats.SpeciesIDs,
			ThreatsViewed: stats.ThreatIDs,
			ThreatActions: stats.ThreatActions,
			Games: GamesStats{
				Memory: MemoryStats{
					Easy:   memory(fact.Easy),
					Medium: memory(fact.Medium),
					Hard:   memory(fact.Hard),
				},
				Connections: GameStats{
					BestScore: stats.BestScoreAnyDifficulty(fact.GameConnections),
					Completed: stats.GamesCompletedAnyDifficulty(fact.GameConnections),
				},
			},
		},
	}
}
