package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/fact"
	"github.com/vitor518/Mangues/core/user"
)

func createUser(t *testing.T, repo *userRepository, handle string) user.User {
	usr, err := repo.CreateUser(context.Background(), user.User{Name: handle, Handle: handle, Visits: 1})
	require.NoError(t, err)
	return usr
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, _ := Open()
	repo := NewUserRepository(db)

	usr := createUser(t, repo, "Maria")
	assert.Equal(t, 1, usr.ID)

	_, err := repo.CreateUser(context.Background(), user.User{Name: "x", Handle: "maria"})
	assert.Equal(t, user.ErrHandleExists, err)

	got, err := repo.GetUserByHandle(context.Background(), "MARIA")
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.Handle)
}

func TestUserRepository_UpdateUser(t *testing.T) {
	db, _ := Open()
	repo := NewUserRepository(db)
	ctx := context.Background()
	usr := createUser(t, repo, "maria")

	// points and visits are not writable here
	usr.Name = "Maria S."
	usr.TotalPoints = 9999
	usr.Visits = 42
	updated, err := repo.UpdateUser(ctx, usr)
	require.NoError(t, err)
	assert.Equal(t, "Maria S.", updated.Name)
	assert.Zero(t, updated.TotalPoints)
	assert.Equal(t, 1, updated.Visits)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	visited, err := repo.RecordVisit(ctx, usr.ID, at)
	require.NoError(t, err)
	assert.Equal(t, 2, visited.Visits)
	assert.Equal(t, at, visited.LastSeenAt)

	_, err = repo.RecordVisit(ctx, 999, at)
	assert.Equal(t, user.ErrNotFound, err)
}

func TestUserRepository_QueryRanking(t *testing.T) {
	db, _ := Open()
	users := NewUserRepository(db)
	achs := NewAchievementRepository(db)
	facts := NewFactRepository(db)
	ctx := context.Background()
	require.NoError(t, achs.UpsertAchievements(ctx, achievement.Catalog))

	a := createUser(t, users, "a_user")
	b := createUser(t, users, "b_user")
	c := createUser(t, users, "c_user")
	d := createUser(t, users, "d_user")

	// b: 100 pts in 1 grant; c: 100 pts in 2 grants; d: 10 pts
	grant := func(usr user.User, id string) {
		_, awarded, err := achs.GrantAchievement(ctx, usr.ID, id)
		require.NoError(t, err)
		require.True(t, awarded)
	}
	grant(b, achievement.AllThreats)
	grant(c, achievement.MemoryEasy)
	grant(c, achievement.FrequentVisitor)
	grant(d, achievement.FirstSpecies)
	require.NoError(t, facts.RecordGameResult(ctx, c.ID, fact.GameResult{Game: fact.GameConnections, Score: 1}))

	entries, err := users.QueryRanking(ctx, 10)
	require.NoError(t, err)
	got := make([]int, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.ID)
	}
	assert.Equal(t, []int{c.ID, b.ID, d.ID, a.ID}, got)
	assert.Equal(t, 2, entries[0].TotalAchievements)
	assert.Equal(t, 1, entries[0].TotalGames)
	assert.Equal(t, 100, entries[0].TotalPoints)

	entries, err = users.QueryRanking(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAchievementRepository_QueryPointDiscrepancies(t *testing.T) {
	db, _ := Open()
	users := NewUserRepository(db)
	achs := NewAchievementRepository(db)
	ctx := context.Background()
	require.NoError(t, achs.UpsertAchievements(ctx, achievement.Catalog))

	usr := createUser(t, users, "maria")
	_, _, err := achs.GrantAchievement(ctx, usr.ID, achievement.MemoryHard)
	require.NoError(t, err)

	ds, err := achs.QueryPointDiscrepancies(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds)

	db.users[usr.ID].TotalPoints = 5 // simulate corruption
	ds, err = achs.QueryPointDiscrepancies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []achievement.Discrepancy{{UserID: usr.ID, TotalPoints: 5, GrantPoints: 200}}, ds)
}
