package achievement

import "time"

// Achievement ids double as the rule tags the progress evaluator matches on.
const (
	FirstSpecies       = "first-species"
	MemoryEasy         = "memory-easy"
	MemoryMedium       = "memory-medium"
	MemoryHard         = "memory-hard"
	ConnectionsPerfect = "connections-perfect"
	AllSpecies         = "all-species"
	AllThreats         = "all-threats"
	FrequentVisitor    = "frequent-visitor"
	FlawlessGame       = "flawless-game"
	Marathoner         = "marathoner"
)

type Achievement struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"nome" db:"nome"`
	Description string `json:"descricao" db:"descricao"`
	Emblem      string `json:"emoji" db:"emoji"`
	Points      int    `json:"pontos" db:"pontos"`
	Position    int    `json:"-" db:"ordem"` // catalog order, breaks ties between equal points
}

// Granted is an achievement awarded to a user.
type Granted struct {
	Achievement
	GrantedAt time.Time `json:"data_conquista" db:"data_conquista"`
}

// Discrepancy is a user whose point total disagrees with the sum of their grants.
type Discrepancy struct {
	UserID      int `db:"usuario_id"`
	TotalPoints int `db:"total_pontos"`
	GrantPoints int `db:"soma_conquistas"`
}

// Catalog is the seeded set of achievements, in catalog order.
var Catalog = []Achievement{
	{ID: FirstSpecies, Name: "Explorador Iniciante", Description: "Visualizou sua primeira espécie", Emblem: "🔍", Points: 10},
	{ID: MemoryEasy, Name: "Memória Afiada", Description: "Completou o jogo da memória fácil", Emblem: "🧠", Points: 50},
	{ID: MemoryMedium, Name: "Mestre da Memória", Description: "Completou o jogo da memória médio", Emblem: "🎯", Points: 100},
	{ID: MemoryHard, Name: "Campeão da Memória", Description: "Completou o jogo da memória difícil", Emblem: "👑", Points: 200},
	{ID: ConnectionsPerfect, Name: "Conector Expert", Description: "Acertou todas as conexões perfeitamente", Emblem: "⚡", Points: 75},
	{ID: AllSpecies, Name: "Biólogo Júnior", Description: "Visualizou todas as espécies", Emblem: "🌿", Points: 150},
	{ID: AllThreats, Name: "Guardião do Mangue", Description: "Conheceu todas as ameaças", Emblem: "🛡️", Points: 100},
	{ID: FrequentVisitor, Name: "Explorador Dedicado", Description: "Visitou o site 10 vezes", Emblem: "🌟", Points: 50},
	{ID: FlawlessGame, Name: "Perfeição Total", Description: "Completou um jogo com pontuação máxima", Emblem: "💎", Points: 300},
	{ID: Marathoner, Name: "Maratonista dos Jogos", Description: "Completou 20 jogos", Emblem: "🏃", Points: 250},
}

func init() {
	for i := range Catalog {
		Catalog[i].Position = i + 1
	}
}
