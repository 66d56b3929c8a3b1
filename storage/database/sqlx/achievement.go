package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/user"
)

const achievementColumns = "id, nome, descricao, emoji, pontos, ordem"

type achievementRepository struct {
	db core.DB
}

var _ achievement.Repository = (*achievementRepository)(nil) // interface compliance check

func NewAchievementRepository(db core.DB) *achievementRepository {
	return &achievementRepository{db: db}
}

func (repo achievementRepository) UpsertAchievements(ctx context.Context, defs []achievement.Achievement) error {
	return inTx(ctx, repo.db, nil, func(tx core.DBTransactor) error {
		for _, ach := range defs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO conquistas (`+achievementColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE SET
					nome = EXCLUDED.nome,
					descricao = EXCLUDED.descricao,
					emoji = EXCLUDED.emoji,
					pontos = EXCLUDED.pontos,
					ordem = EXCLUDED.ordem`,
				ach.ID, ach.Name, ach.Description, ach.Emblem, ach.Points, ach.Position)
			if err != nil {
				return errors.Wrapf(err, "upserting achievement %q", ach.ID)
			}
		}
		return nil
	})
}

func (repo achievementRepository) GetAchievement(ctx context.Context, id string) (achievement.Achievement, error) {
	var ach achievement.Achievement
	err := repo.db.GetContext(ctx, &ach, "SELECT "+achievementColumns+" FROM conquistas WHERE id = $1", id)
	if err != nil {
		return achievement.Achievement{}, trapNoRowsErr(err, achievement.ErrNotFound, "finding achievement")
	}
	return ach, nil
}

func (repo achievementRepository) QueryAchievements(ctx context.Context) ([]achievement.Achievement, error) {
	var achs []achievement.Achievement
	err := repo.db.SelectContext(ctx, &achs, "SELECT "+achievementColumns+" FROM conquistas ORDER BY pontos DESC, ordem ASC")
	if err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}
	return achs, nil
}

func (repo achievementRepository) GrantAchievement(ctx context.Context, userID int, id string) (achievement.Achievement, bool, error) {
	var (
		ach     achievement.Achievement
		awarded bool
	)
	err := inTx(ctx, repo.db, nil, func(tx core.DBTransactor) error {
		// serialize grants of the same user
		var locked int
		if err := tx.GetContext(ctx, &locked, "SELECT id FROM usuarios WHERE id = $1 FOR UPDATE", userID); err != nil {
			return trapNoRowsErr(err, user.ErrNotFound, "locking user")
		}

		// a concurrent re-seed waits until the credit is committed
		if err := tx.GetContext(ctx, &ach, "SELECT "+achievementColumns+" FROM conquistas WHERE id = $1 FOR SHARE", id); err != nil {
			return trapNoRowsErr(err, achievement.ErrNotFound, "finding achievement")
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO usuario_conquistas (usuario_id, conquista_id, pontos) VALUES ($1, $2, $3)
			ON CONFLICT (usuario_id, conquista_id) DO NOTHING`,
			userID, id, ach.Points)
		if err != nil {
			return errors.Wrap(err, "inserting grant")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "inserting grant")
		}
		if n == 0 {
			return nil // already held
		}

		res, err = tx.ExecContext(ctx, "UPDATE usuarios SET total_pontos = total_pontos + $1 WHERE id = $2", ach.Points, userID)
		if err != nil {
			return errors.Wrap(err, "crediting points")
		}
		if n, err = res.RowsAffected(); err != nil {
			return errors.Wrap(err, "crediting points")
		}
		if n != 1 {
			return core.NewShutdownError("crediting points: user row vanished inside its own lock")
		}
		awarded = true
		return nil
	})
	if err != nil {
		return achievement.Achievement{}, false, err
	}
	return ach, awarded, nil
}

func (repo achievementRepository) QueryUserAchievements(ctx context.Context, userID int) ([]achievement.Granted, error) {
	var granted []achievement.Granted
	err := repo.db.SelectContext(ctx, &granted,
		`SELECT c.id, c.nome, c.descricao, c.emoji, c.pontos, c.ordem, uc.data_conquista
		FROM usuario_conquistas uc
		JOIN conquistas c ON c.id = uc.conquista_id
		WHERE uc.usuario_id = $1
		ORDER BY uc.data_conquista DESC, uc.id DESC`,
		userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying user achievements")
	}
	return granted, nil
}

func (repo achievementRepository) QueryPointDiscrepancies(ctx context.Context) ([]achievement.Discrepancy, error) {
	var ds []achievement.Discrepancy
	err := repo.db.SelectContext(ctx, &ds,
		`SELECT u.id AS usuario_id, u.total_pontos, COALESCE(SUM(uc.pontos), 0) AS soma_conquistas
		FROM usuarios u
		LEFT JOIN usuario_conquistas uc ON uc.usuario_id = u.id
		GROUP BY u.id, u.total_pontos
		HAVING u.total_pontos <> COALESCE(SUM(uc.pontos), 0)
		ORDER BY u.id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying point discrepancies")
	}
	return ds, nil
}
