package inmemdb

import (
	"context"

	"github.com/vitor518/Mangues/core/fact"
	"github.com/vitor518/Mangues/core/user"
)

type factRepository struct {
	db *DB
}

var _ fact.Repository = (*factRepository)(nil) // interface compliance check

func NewFactRepository(db *DB) *factRepository {
	return &factRepository{db: db}
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (repo *factRepository) RecordSpeciesViewed(_ context.Context, userID, speciesID int) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.db.userExists(userID) {
		return false, user.ErrNotFound
	}
	if containsInt(repo.db.species[userID], speciesID) {
		return false, nil
	}
	repo.db.species[userID] = append(repo.db.species[userID], speciesID)
	return true, nil
}

func (repo *factRepository) RecordThreatViewed(_ context.Context, userID, threatID int) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.db.userExists(userID) {
		return false, user.ErrNotFound
	}
	if containsInt(repo.db.threats[userID], threatID) {
		return false, nil
	}
	repo.db.threats[userID] = append(repo.db.threats[userID], threatID)
	return true, nil
}

func (repo *factRepository) RecordThreatAction(_ context.Context, userID, threatID, actionIndex int) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.db.userExists(userID) {
		return false, user.ErrNotFound
	}
	action := fact.ThreatAction{ThreatID: threatID, ActionIndex: actionIndex}
	for _, a := range repo.db.actions[userID] {
		if a == action {
			return false, nil
		}
	}
	repo.db.actions[userID] = append(repo.db.actions[userID], action)
	return true, nil
}

func (repo *factRepository) RecordGameResult(_ context.Context, userID int, res fact.GameResult) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.db.userExists(userID) {
		return user.ErrNotFound
	}
	repo.db.games[userID] = append(repo.db.games[userID], res)
	return nil
}

func (repo *factRepository) QueryStats(_ context.Context, userID int) (fact.Stats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stats := fact.Stats{
		SpeciesIDs:    append([]int{}, repo.db.species[userID]...),
		ThreatIDs:     append([]int{}, repo.db.threats[userID]...),
		ThreatActions: append([]fact.ThreatAction{}, repo.db.actions[userID]...),
		Games:         []fact.GameSummary{},
	}

	type gameKey struct {
		game       fact.GameKind
		difficulty fact.Difficulty
	}
	index := make(map[gameKey]int)
	for _, res := range repo.db.games[userID] {
		key := gameKey{res.Game, res.Difficulty}
		i, ok := index[key]
		if !ok {
			i = len(stats.Games)
			index[key] = i
			stats.Games = append(stats.Games, fact.GameSummary{Game: res.Game, Difficulty: res.Difficulty})
		}
		stats.Games[i].Completed++
		if res.Score > stats.Games[i].BestScore {
			stats.Games[i].BestScore = res.Score
		}
	}
	return stats, nil
}
