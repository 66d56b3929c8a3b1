package achievement

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vitor518/Mangues/core"
)

var ErrNotFound = core.NewNotFoundError("Conquista não encontrada")

type (
	Repository interface {
		// UpsertAchievements inserts or updates achievement metadata by id. Grants are never touched.
		UpsertAchievements(ctx context.Context, defs []Achievement) error
		GetAchievement(ctx context.Context, id string) (Achievement, error)
		// QueryAchievements orders by points descending, then catalog position.
		QueryAchievements(ctx context.Context) ([]Achievement, error)

		// GrantAchievement atomically records the grant and credits its points to the user.
		// The returned Achievement is the one read inside the grant, so its Points are the credited ones.
		// It returns false, without any change, when the user already holds the achievement.
		// Unknown users yield user.ErrNotFound and unknown achievements ErrNotFound.
		GrantAchievement(ctx context.Context, userID int, id string) (Achievement, bool, error)
		// QueryUserAchievements returns the user's grants, most recent first.
		QueryUserAchievements(ctx context.Context, userID int) ([]Granted, error)
		QueryPointDiscrepancies(ctx context.Context) ([]Discrepancy, error)
	}

	// Service is the achievement catalog and the progression ledger.
	// It is the only writer of user point totals.
	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Seed upserts Catalog. Safe to run on every start.
func (svc *Service) Seed(ctx context.Context) error {
	if err := svc.repo.UpsertAchievements(ctx, Catalog); err != nil {
		return errors.Wrap(err, "seeding achievements")
	}
	return nil
}

func (svc *Service) Get(ctx context.Context, id string) (Achievement, error) {
	return svc.repo.GetAchievement(ctx, id)
}

func (svc *Service) List(ctx context.Context) ([]Achievement, error) {
	achs, err := svc.repo.QueryAchievements(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}
	if achs == nil {
		achs = []Achievement{}
	}
	return achs, nil
}

// Grant awards the achievement to the user at most once.
func (svc *Service) Grant(ctx context.Context, userID int, id string) (Achievement, bool, error) {
	ach, awarded, err := svc.repo.GrantAchievement(ctx, userID, id)
	if err != nil {
		return Achievement{}, false, errors.Wrapf(err, "granting %q to user %d", id, userID)
	}
	return ach, awarded, nil
}

func (svc *Service) UserAchievements(ctx context.Context, userID int) ([]Granted, error) {
	granted, err := svc.repo.QueryUserAchievements(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying user achievements")
	}
	if granted == nil {
		granted = []Granted{}
	}
	return granted, nil
}

// Audit lists the users whose point total is not the sum of their grants. Empty means the ledger is consistent.
func (svc *Service) Audit(ctx context.Context) ([]Discrepancy, error) {
	ds, err := svc.repo.QueryPointDiscrepancies(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "auditing points")
	}
	return ds, nil
}
