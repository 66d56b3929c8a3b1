package progress

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/fact"
	"github.com/vitor518/Mangues/core/user"
)

type (
	Deps struct {
		Users        user.Repository
		Facts        *fact.Store
		Achievements *achievement.Service
		Validate     *validator.Validate
		Logger       core.Logger
	}

	// Service turns user actions into facts, grants and profiles.
	Service struct {
		users        user.Repository
		facts        *fact.Store
		achievements *achievement.Service
		validate     *validator.Validate
		logger       core.Logger
	}

	// Result is the refreshed profile and the achievements awarded by the handled action.
	Result struct {
		Profile Profile
		Awarded []achievement.Achievement
	}
)

func NewService(deps Deps) *Service {
	return &Service{
		users:        deps.Users,
		facts:        deps.Facts,
		achievements: deps.Achievements,
		validate:     deps.Validate,
		logger:       deps.Logger,
	}
}

// Handle records a fact for the user, grants what it unlocks and returns the new profile.
// Replaying a handled fact is safe: dedup facts are not re-recorded and grants are at most once.
func (svc *Service) Handle(ctx context.Context, userID int, f fact.Fact) (Result, error) {
	if err := fact.Validate(svc.validate, f); err != nil {
		return Result{}, err
	}
	if _, err := svc.users.GetUser(ctx, userID); err != nil {
		return Result{}, err
	}
	if _, err := svc.facts.Record(ctx, userID, f); err != nil {
		return Result{}, err
	}

	stats, err := svc.facts.Stats(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	awarded := svc.grant(ctx, userID, Evaluate(f, stats))

	profile, err := svc.Profile(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	return Result{Profile: profile, Awarded: awarded}, nil
}

// HandleVisit grants what a login unlocks. usr must carry the visit count after the login increment.
func (svc *Service) HandleVisit(ctx context.Context, usr user.User) (Result, error) {
	awarded := svc.grant(ctx, usr.ID, EvaluateVisit(usr.Visits))

	profile, err := svc.Profile(ctx, usr.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{Profile: profile, Awarded: awarded}, nil
}

// Profile composes the user with their achievements and fact statistics.
func (svc *Service) Profile(ctx context.Context, userID int) (Profile, error) {
	usr, err := svc.users.GetUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	granted, err := svc.achievements.UserAchievements(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	stats, err := svc.facts.Stats(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return newProfile(usr, granted, stats), nil
}

// grant tries each candidate on its own. A failed grant is logged and does not stop the others.
func (svc *Service) grant(ctx context.Context, userID int, ids []string) []achievement.Achievement {
	awarded := make([]achievement.Achievement, 0, len(ids))
	for _, id := range ids {
		ach, ok, err := svc.achievements.Grant(ctx, userID, id)
		if err != nil {
			svc.logger.Error(
				"granting achievement",
				errors.Wrap(err, "granting achievement"),
				map[string]interface{}{"usuario_id": userID, "conquista_id": id},
			)
			continue
		}
		if ok {
			awarded = append(awarded, ach)
		}
	}
	return awarded
}
