package fact

// Kind is the action type clients send with each fact.
type Kind string

const (
	KindSpeciesViewed         Kind = "especie_vista"
	KindThreatViewed          Kind = "ameaca_vista"
	KindGameCompleted         Kind = "jogo_completado"
	KindThreatActionCompleted Kind = "acao_ameaca"
)

type GameKind string

const (
	GameMemory      GameKind = "memoria"
	GameConnections GameKind = "conexoes"
)

type Difficulty string

const (
	NoDifficulty Difficulty = ""
	Easy         Difficulty = "facil"
	Medium       Difficulty = "medio"
	Hard         Difficulty = "dificil"
)

// Fact is something a user did or saw. It is implemented only by the types in this package.
type Fact interface {
	Kind() Kind
	isFact()
}

// SpeciesViewed is recorded at most once per (user, species).
type SpeciesViewed struct {
	SpeciesID int `json:"especieId" validate:"gte=1"`
}

// ThreatViewed is recorded at most once per (user, threat).
type ThreatViewed struct {
	ThreatID int `json:"ameacaId" validate:"gte=1"`
}

// ThreatActionCompleted is recorded at most once per (user, threat, action).
type ThreatActionCompleted struct {
	ThreatID    int `json:"ameacaId" validate:"gte=1"`
	ActionIndex int `json:"acaoIndex" validate:"gte=0"`
}

// GameResult is appended for every completed game.
type GameResult struct {
	Game       GameKind   `json:"tipoJogo" validate:"required,oneof=memoria conexoes"`
	Difficulty Difficulty `json:"dificuldade,omitempty" validate:"omitempty,oneof=facil medio dificil"`
	Score      int        `json:"pontuacao" validate:"gte=0"`
}

func (SpeciesViewed) Kind() Kind         { return KindSpeciesViewed }
func (ThreatViewed) Kind() Kind          { return KindThreatViewed }
func (ThreatActionCompleted) Kind() Kind { return KindThreatActionCompleted }
func (GameResult) Kind() Kind            { return KindGameCompleted }

func (SpeciesViewed) isFact()         {}
func (ThreatViewed) isFact()          {}
func (ThreatActionCompleted) isFact() {}
func (GameResult) isFact()            {}

type ThreatAction struct {
	ThreatID    int `json:"ameaca_id" db:"ameaca_id"`
	ActionIndex int `json:"acao_index" db:"acao_index"`
}

// GameSummary aggregates the completed games of one (game, difficulty) pair.
type GameSummary struct {
	Game       GameKind
	Difficulty Difficulty
	BestScore  int
	Completed  int
}

// Stats is every aggregate kept about a user's facts.
type Stats struct {
	SpeciesIDs    []int
	ThreatIDs     []int
	ThreatActions []ThreatAction
	Games         []GameSummary
}

func (s Stats) SpeciesCount() int { return len(s.SpeciesIDs) }

func (s Stats) ThreatCount() int { return len(s.ThreatIDs) }

// GamesCompleted counts the completed games of a kind and difficulty.
func (s Stats) GamesCompleted(game GameKind, difficulty Difficulty) int {
	for _, g := range s.Games {
		if g.Game == game && g.Difficulty == difficulty {
			return g.Completed
		}
	}
	return 0
}

// GamesCompletedAnyDifficulty counts the completed games of a kind.
func (s Stats) GamesCompletedAnyDifficulty(game GameKind) int {
	var total int
	for _, g := range s.Games {
		if g.Game == game {
			total += g.Completed
		}
	}
	return total
}

// BestScore is the best score of a kind and difficulty, 0 if none.
func (s Stats) BestScore(game GameKind, difficulty Difficulty) int {
	for _, g := range s.Games {
		if g.Game == game && g.Difficulty == difficulty {
			return g.BestScore
		}
	}
	return 0
}

// BestScoreAnyDifficulty is the best score of a kind across difficulties, 0 if none.
func (s Stats) BestScoreAnyDifficulty(game GameKind) int {
	var best int
	for _, g := range s.Games {
		if g.Game == game && g.BestScore > best {
			best = g.BestScore
		}
	}
	return best
}

func (s Stats) TotalGames() int {
	var total int
	for _, g := range s.Games {
		total += g.Completed
	}
	return total
}
