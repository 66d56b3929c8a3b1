package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/core/user"
)

const userColumns = "id, nome, apelido, senha_hash, avatar, data_criacao, ultimo_acesso, total_pontos, visitas"

var rankingOrdering = []core.DBOrdering{
	{Field: "total_pontos"},
	{Field: "total_conquistas"},
	{Field: "id", Ascending: true},
}

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO usuarios (nome, apelido, senha_hash, avatar, data_criacao, ultimo_acesso, visitas)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	var created user.User
	err := repo.db.GetContext(ctx, &created, q,
		usr.Name, usr.Handle, usr.PasswordHash, usr.Avatar, usr.CreatedAt.UTC(), usr.LastSeenAt.UTC(), usr.Visits)
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return user.User{}, user.ErrHandleExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return created, nil
}

func (repo userRepository) GetUser(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, "SELECT "+userColumns+" FROM usuarios WHERE id = $1", id)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by ID")
	}
	return usr, nil
}

func (repo userRepository) GetUserByHandle(ctx context.Context, handle string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, "SELECT "+userColumns+" FROM usuarios WHERE LOWER(apelido) = LOWER($1)", handle)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by handle")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE usuarios SET nome = $1, avatar = $2, senha_hash = $3, ultimo_acesso = $4
		WHERE id = $5
		RETURNING ` + userColumns
	var updated user.User
	err := repo.db.GetContext(ctx, &updated, q, usr.Name, usr.Avatar, usr.PasswordHash, usr.LastSeenAt.UTC(), usr.ID)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "updating user")
	}
	return updated, nil
}

func (repo userRepository) RecordVisit(ctx context.Context, id int, at time.Time) (user.User, error) {
	q := `UPDATE usuarios SET visitas = visitas + 1, ultimo_acesso = $1
		WHERE id = $2
		RETURNING ` + userColumns
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, q, at.UTC(), id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "recording visit")
	}
	return usr, nil
}

func (repo userRepository) QueryRanking(ctx context.Context, limit int) ([]user.RankingEntry, error) {
	orderList := make([]string, 0, len(rankingOrdering))
	for _, ord := range rankingOrdering {
		orderList = append(orderList, ord.String())
	}
	q := `SELECT id, nome, apelido, avatar, total_pontos,
			(SELECT COUNT(*) FROM usuario_conquistas uc WHERE uc.usuario_id = u.id) AS total_conquistas,
			(SELECT COUNT(*) FROM estatisticas_jogos ej WHERE ej.usuario_id = u.id) AS total_jogos
		FROM usuarios u
		ORDER BY ` + strings.Join(orderList, ", ") + `
		LIMIT $1`

	var entries []user.RankingEntry
	if err := repo.db.SelectContext(ctx, &entries, q, limit); err != nil {
		return nil, errors.Wrap(err, "querying ranking")
	}
	return entries, nil
}
