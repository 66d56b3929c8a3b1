package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/core/fact"
	"github.com/vitor518/Mangues/core/user"
)

type factRepository struct {
	db core.DB
}

var _ fact.Repository = (*factRepository)(nil) // interface compliance check

func NewFactRepository(db core.DB) *factRepository {
	return &factRepository{db: db}
}

type gameSummaryRow struct {
	Game       string      `db:"tipo_jogo"`
	Difficulty null.String `db:"dificuldade"`
	BestScore  int         `db:"melhor_pontuacao"`
	Completed  int         `db:"jogos_completos"`
}

// insertOnce runs an INSERT ... ON CONFLICT DO NOTHING and reports whether a row was created.
func (repo factRepository) insertOnce(ctx context.Context, msg, q string, args ...interface{}) (bool, error) {
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, repo.trapFKErr(err, msg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, msg)
	}
	return n == 1, nil
}

// trapFKErr maps a violated usuario_id reference to user.ErrNotFound
func (repo factRepository) trapFKErr(err error, msg string) error {
	if isPgError(err, foreignKeyViolation) {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo factRepository) RecordSpeciesViewed(ctx context.Context, userID, speciesID int) (bool, error) {
	return repo.insertOnce(ctx, "inserting viewed species",
		`INSERT INTO especies_visualizadas (usuario_id, especie_id) VALUES ($1, $2)
		ON CONFLICT (usuario_id, especie_id) DO NOTHING`,
		userID, speciesID)
}

func (repo factRepository) RecordThreatViewed(ctx context.Context, userID, threatID int) (bool, error) {
	return repo.insertOnce(ctx, "inserting viewed threat",
		`INSERT INTO ameacas_visualizadas (usuario_id, ameaca_id) VALUES ($1, $2)
		ON CONFLICT (usuario_id, ameaca_id) DO NOTHING`,
		userID, threatID)
}

func (repo factRepository) RecordThreatAction(ctx context.Context, userID, threatID, actionIndex int) (bool, error) {
	return repo.insertOnce(ctx, "inserting threat action",
		`INSERT INTO acoes_ameacas (usuario_id, ameaca_id, acao_index) VALUES ($1, $2, $3)
		ON CONFLICT (usuario_id, ameaca_id, acao_index) DO NOTHING`,
		userID, threatID, actionIndex)
}

func (repo factRepository) RecordGameResult(ctx context.Context, userID int, res fact.GameResult) error {
	difficulty := null.NewString(string(res.Difficulty), res.Difficulty != fact.NoDifficulty)
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO estatisticas_jogos (usuario_id, tipo_jogo, dificuldade, pontuacao) VALUES ($1, $2, $3, $4)`,
		userID, string(res.Game), difficulty, res.Score)
	if err != nil {
		return repo.trapFKErr(err, "inserting game result")
	}
	return nil
}

func (repo factRepository) QueryStats(ctx context.Context, userID int) (fact.Stats, error) {
	var stats fact.Stats
	// read all aggregates from one snapshot
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := inTx(ctx, repo.db, opts, func(tx core.DBTransactor) error {
		if err := tx.SelectContext(ctx, &stats.SpeciesIDs,
			`SELECT especie_id FROM especies_visualizadas WHERE usuario_id = $1 ORDER BY data_visualizacao, id`,
			userID); err != nil {
			return errors.Wrap(err, "querying viewed species")
		}
		if err := tx.SelectContext(ctx, &stats.ThreatIDs,
			`SELECT ameaca_id FROM ameacas_visualizadas WHERE usuario_id = $1 ORDER BY data_visualizacao, id`,
			userID); err != nil {
			return errors.Wrap(err, "querying viewed threats")
		}
		if err := tx.SelectContext(ctx, &stats.ThreatActions,
			`SELECT ameaca_id, acao_index FROM acoes_ameacas WHERE usuario_id = $1 ORDER BY data_conclusao, id`,
			userID); err != nil {
			return errors.Wrap(err, "querying threat actions")
		}

		var rows []gameSummaryRow
		if err := tx.SelectContext(ctx, &rows,
			`SELECT tipo_jogo, dificuldade, MAX(pontuacao) AS melhor_pontuacao, COUNT(*) AS jogos_completos
			FROM estatisticas_jogos
			WHERE usuario_id = $1 AND completado
			GROUP BY tipo_jogo, dificuldade
			ORDER BY tipo_jogo, dificuldade`,
			userID); err != nil {
			return errors.Wrap(err, "querying game stats")
		}
		stats.Games = make([]fact.GameSummary, 0, len(rows))
		for _, r := range rows {
			stats.Games = append(stats.Games, fact.GameSummary{
				Game:       fact.GameKind(r.Game),
				Difficulty: fact.Difficulty(r.Difficulty.String),
				BestScore:  r.BestScore,
				Completed:  r.Completed,
			})
		}
		return nil
	})
	if err != nil {
		return fact.Stats{}, err
	}
	return stats, nil
}
