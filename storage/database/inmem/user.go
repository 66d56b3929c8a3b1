package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/vitor518/Mangues/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) findByHandle(handle string) (*user.User, bool) {
	for _, usr := range repo.db.users {
		if strings.EqualFold(usr.Handle, handle) {
			return usr, true
		}
	}
	return nil, false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, found := repo.findByHandle(usr.Handle); found {
		return user.User{}, user.ErrHandleExists
	}
	repo.db.userSeq++
	usr.ID = repo.db.userSeq
	usr.TotalPoints = 0
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, id int) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByHandle(_ context.Context, handle string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, found := repo.findByHandle(handle); found {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save profile fields
	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	orig.Name = usr.Name
	orig.Avatar = usr.Avatar
	orig.PasswordHash = usr.PasswordHash
	orig.LastSeenAt = usr.LastSeenAt
	return *orig, nil
}

func (repo *userRepository) RecordVisit(_ context.Context, id int, at time.Time) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.Visits++
	usr.LastSeenAt = at
	return *usr, nil
}

func (repo *userRepository) QueryRanking(_ context.Context, limit int) ([]user.RankingEntry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]user.RankingEntry, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		entries = append(entries, user.RankingEntry{
			ID:                usr.ID,
			Name:              usr.Name,
			Handle:            usr.Handle,
			Avatar:            usr.Avatar,
			TotalPoints:       usr.TotalPoints,
			TotalAchievements: len(repo.db.grants[usr.ID]),
			TotalGames:        len(repo.db.games[usr.ID]),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.TotalAchievements != b.TotalAchievements {
			return a.TotalAchievements > b.TotalAchievements
		}
		return a.ID < b.ID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
