package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/user"
)

type achievementRepository struct {
	db *DB
}

var _ achievement.Repository = (*achievementRepository)(nil) // interface compliance check

func NewAchievementRepository(db *DB) *achievementRepository {
	return &achievementRepository{db: db}
}

func (repo *achievementRepository) UpsertAchievements(_ context.Context, defs []achievement.Achievement) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, ach := range defs {
		repo.db.achievements[ach.ID] = ach
	}
	return nil
}

func (repo *achievementRepository) GetAchievement(_ context.Context, id string) (achievement.Achievement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ach, ok := repo.db.achievements[id]; ok {
		return ach, nil
	}
	return achievement.Achievement{}, achievement.ErrNotFound
}

func (repo *achievementRepository) QueryAchievements(_ context.Context) ([]achievement.Achievement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	achs := make([]achievement.Achievement, 0, len(repo.db.achievements))
	for _, ach := range repo.db.achievements {
		achs = append(achs, ach)
	}
	sort.Slice(achs, func(i, j int) bool {
		if achs[i].Points != achs[j].Points {
			return achs[i].Points > achs[j].Points
		}
		return achs[i].Position < achs[j].Position
	})
	return achs, nil
}

func (repo *achievementRepository) GrantAchievement(_ context.Context, userID int, id string) (achievement.Achievement, bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[userID]
	if !ok {
		return achievement.Achievement{}, false, user.ErrNotFound
	}
	ach, ok := repo.db.achievements[id]
	if !ok {
		return achievement.Achievement{}, false, achievement.ErrNotFound
	}
	for _, g := range repo.db.grants[userID] {
		if g.achievementID == id {
			return ach, false, nil
		}
	}

	repo.db.grants[userID] = append(repo.db.grants[userID], grantRow{
		achievementID: id,
		points:        ach.Points,
		grantedAt:     time.Now().UTC(),
	})
	usr.TotalPoints += ach.Points
	return ach, true, nil
}

func (repo *achievementRepository) QueryUserAchievements(_ context.Context, userID int) ([]achievement.Granted, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := repo.db.grants[userID]
	granted := make([]achievement.Granted, 0, len(rows))
	// most recent first
	for i := len(rows) - 1; i >= 0; i-- {
		granted = append(granted, achievement.Granted{
			Achievement: repo.db.achievements[rows[i].achievementID],
			GrantedAt:   rows[i].grantedAt,
		})
	}
	return granted, nil
}

func (repo *achievementRepository) QueryPointDiscrepancies(_ context.Context) ([]achievement.Discrepancy, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ds := make([]achievement.Discrepancy, 0)
	for id, usr := range repo.db.users {
		var sum int
		for _, g := range repo.db.grants[id] {
			sum += g.points
		}
		if sum != usr.TotalPoints {
			ds = append(ds, achievement.Discrepancy{UserID: id, TotalPoints: usr.TotalPoints, GrantPoints: sum})
		}
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].UserID < ds[j].UserID })
	return ds, nil
}
