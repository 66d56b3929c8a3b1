package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vitor518/Mangues/core"
)

const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("Usuário não encontrado")
	ErrHandleExists       = core.NewConflictError("Este apelido já está sendo usado. Escolha outro!")
	ErrInvalidCredentials = errors.New("Apelido ou senha incorretos")
	ErrNothingToUpdate    = errors.New("Nenhum dado válido para atualizar")
)

type (
	// Repository stores users. Handles are matched case-insensitively and
	// CreateUser must return ErrHandleExists when the handle is taken.
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, id int) (User, error)
		GetUserByHandle(ctx context.Context, handle string) (User, error)
		// UpdateUser saves the profile fields and password hash. Points and visits are never written here.
		UpdateUser(ctx context.Context, usr User) (User, error)
		// RecordVisit increments the visit count and refreshes the last access time.
		RecordVisit(ctx context.Context, id int, at time.Time) (User, error)
		QueryRanking(ctx context.Context, limit int) ([]RankingEntry, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	// pre-check for a friendlier error; the unique index decides under races
	if _, err := svc.repo.GetUserByHandle(ctx, nu.Handle); err == nil {
		return User{}, ErrHandleExists
	} else if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "checking handle uniqueness")
	}

	now := time.Now().UTC()
	usr := User{
		Name:       nu.Name,
		Handle:     nu.Handle,
		Avatar:     nu.Avatar,
		CreatedAt:  now,
		LastSeenAt: now,
		Visits:     1,
	}
	if usr.Avatar == "" {
		usr.Avatar = DefaultAvatar
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Login checks the credentials and counts a new visit. The returned User carries the incremented visit count.
func (svc *Service) Login(ctx context.Context, creds Credentials) (User, error) {
	usr, err := svc.repo.GetUserByHandle(ctx, core.CleanString(creds.Handle))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by handle")
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return svc.repo.RecordVisit(ctx, usr.ID, time.Now().UTC())
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, id)
}

func (svc *Service) GetByHandle(ctx context.Context, handle string) (User, error) {
	return svc.repo.GetUserByHandle(ctx, core.CleanString(handle))
}

func (svc *Service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if uu.Name != "" {
		usr.Name = uu.Name
	}
	if uu.Avatar != "" {
		usr.Avatar = uu.Avatar
	}
	usr.LastSeenAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// SetPassword replaces the password of the user with the given handle.
func (svc *Service) SetPassword(ctx context.Context, handle, pwd string) (User, error) {
	usr, err := svc.GetByHandle(ctx, handle)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// Ranking returns the top users by points, then by number of achievements.
// limit falls back to DefaultRankingLimit when not positive and is capped at MaxRankingLimit.
func (svc *Service) Ranking(ctx context.Context, limit int) ([]RankingEntry, error) {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	if limit > MaxRankingLimit {
		limit = MaxRankingLimit
	}
	entries, err := svc.repo.QueryRanking(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying ranking")
	}
	if entries == nil {
		entries = []RankingEntry{}
	}
	return entries, nil
}
