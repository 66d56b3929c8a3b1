package fact

import (
	"context"

	"github.com/pkg/errors"
)

type (
	// Repository persists facts. The Record* methods of deduplicated kinds report whether a row was created.
	// All of them return user.ErrNotFound for an unknown user.
	Repository interface {
		RecordSpeciesViewed(ctx context.Context, userID, speciesID int) (bool, error)
		RecordThreatViewed(ctx context.Context, userID, threatID int) (bool, error)
		RecordThreatAction(ctx context.Context, userID, threatID, actionIndex int) (bool, error)
		RecordGameResult(ctx context.Context, userID int, res GameResult) error
		QueryStats(ctx context.Context, userID int) (Stats, error)
	}

	// Store is the single entry point for writing facts.
	Store struct {
		repo Repository
	}
)

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Record stores a fact. Repeating a deduplicated fact is a no-op and returns created == false.
// Game results are always created. Rules are not evaluated here.
func (s *Store) Record(ctx context.Context, userID int, f Fact) (created bool, err error) {
	switch f := f.(type) {
	case SpeciesViewed:
		created, err = s.repo.RecordSpeciesViewed(ctx, userID, f.SpeciesID)
	case ThreatViewed:
		created, err = s.repo.RecordThreatViewed(ctx, userID, f.ThreatID)
	case ThreatActionCompleted:
		created, err = s.repo.RecordThreatAction(ctx, userID, f.ThreatID, f.ActionIndex)
	case GameResult:
		err = s.repo.RecordGameResult(ctx, userID, f)
		created = err == nil
	default:
		return false, errors.Errorf("unsupported fact %T", f)
	}
	if err != nil {
		return false, errors.Wrapf(err, "recording %s", f.Kind())
	}
	return created, nil
}

// Stats returns the user's aggregates. Slices are never nil.
func (s *Store) Stats(ctx context.Context, userID int) (Stats, error) {
	stats, err := s.repo.QueryStats(ctx, userID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying fact stats")
	}
	if stats.SpeciesIDs == nil {
		stats.SpeciesIDs = []int{}
	}
	if stats.ThreatIDs == nil {
		stats.ThreatIDs = []int{}
	}
	if stats.ThreatActions == nil {
		stats.ThreatActions = []ThreatAction{}
	}
	if stats.Games == nil {
		stats.Games = []GameSummary{}
	}
	return stats, nil
}
