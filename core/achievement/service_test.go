package achievement_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/user"
	inmemdb "github.com/vitor518/Mangues/storage/database/inmem"
	"github.com/vitor518/Mangues/tests"
)

func setup(t *testing.T) (*achievement.Service, user.Repository) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	svc := achievement.NewService(inmemdb.NewAchievementRepository(db))
	require.NoError(t, svc.Seed(context.Background()))
	return svc, inmemdb.NewUserRepository(db)
}

func TestCatalog(t *testing.T) {
	points := map[string]int{
		achievement.FirstSpecies:       10,
		achievement.MemoryEasy:         50,
		achievement.MemoryMedium:       100,
		achievement.MemoryHard:         200,
		achievement.ConnectionsPerfect: 75,
		achievement.AllSpecies:         150,
		achievement.AllThreats:         100,
		achievement.FrequentVisitor:    50,
		achievement.FlawlessGame:       300,
		achievement.Marathoner:         250,
	}
	require.Len(t, achievement.Catalog, len(points))
	for i, ach := range achievement.Catalog {
		assert.Equal(t, points[ach.ID], ach.Points, ach.ID)
		assert.Equal(t, i+1, ach.Position, ach.ID)
		assert.NotEmpty(t, ach.Name, ach.ID)
		assert.NotEmpty(t, ach.Emblem, ach.ID)
	}
}

func TestService_List(t *testing.T) {
	svc, _ := setup(t)

	// seeding twice changes nothing
	require.NoError(t, svc.Seed(context.Background()))

	achs, err := svc.List(context.Background())
	require.NoError(t, err)
	got := make([]string, 0, len(achs))
	for _, a := range achs {
		got = append(got, a.ID)
	}
	want := []string{
		achievement.FlawlessGame,       // 300
		achievement.Marathoner,         // 250
		achievement.MemoryHard,         // 200
		achievement.AllSpecies,         // 150
		achievement.MemoryMedium,       // 100, position 3
		achievement.AllThreats,         // 100, position 7
		achievement.ConnectionsPerfect, // 75
		achievement.MemoryEasy,         // 50, position 2
		achievement.FrequentVisitor,    // 50, position 8
		achievement.FirstSpecies,       // 10
	}
	assert.Equal(t, want, got)
}

func TestService_Get(t *testing.T) {
	svc, _ := setup(t)

	ach, err := svc.Get(context.Background(), achievement.AllThreats)
	require.NoError(t, err)
	assert.Equal(t, 100, ach.Points)

	_, err = svc.Get(context.Background(), "lol")
	assert.Equal(t, achievement.ErrNotFound, errors.Cause(err))
}

func TestService_Grant(t *testing.T) {
	svc, users := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, users, "Maria", "maria", "")

	tests := []struct {
		name        string
		userID      int
		id          string
		wantAwarded bool
		wantErr     error
		wantPoints  int
	}{
		{name: "first grant", userID: usr.ID, id: achievement.MemoryEasy, wantAwarded: true, wantPoints: 50},
		{name: "repeat grant", userID: usr.ID, id: achievement.MemoryEasy, wantPoints: 50},
		{name: "second achievement", userID: usr.ID, id: achievement.FlawlessGame, wantAwarded: true, wantPoints: 350},
		{name: "unknown achievement", userID: usr.ID, id: "lol", wantErr: achievement.ErrNotFound, wantPoints: 350},
		{name: "unknown user", userID: 999, id: achievement.MemoryEasy, wantErr: user.ErrNotFound, wantPoints: 350},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ach, awarded, err := svc.Grant(ctx, tt.userID, tt.id)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Grant() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.wantAwarded, awarded)
			if err == nil {
				assert.Equal(t, tt.id, ach.ID)
			}

			refreshed, err := users.GetUser(ctx, usr.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPoints, refreshed.TotalPoints)
		})
	}

	granted, err := svc.UserAchievements(ctx, usr.ID)
	require.NoError(t, err)
	require.Len(t, granted, 2)
	assert.Equal(t, achievement.FlawlessGame, granted[0].ID)
	assert.Equal(t, achievement.MemoryEasy, granted[1].ID)

	ds, err := svc.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

// reseedingRepository changes an achievement's points right before each grant.
type reseedingRepository struct {
	achievement.Repository
	points int
}

func (repo reseedingRepository) GrantAchievement(ctx context.Context, userID int, id string) (achievement.Achievement, bool, error) {
	ach, err := repo.GetAchievement(ctx, id)
	if err != nil {
		return achievement.Achievement{}, false, err
	}
	ach.Points = repo.points
	if err = repo.UpsertAchievements(ctx, []achievement.Achievement{ach}); err != nil {
		return achievement.Achievement{}, false, err
	}
	return repo.Repository.GrantAchievement(ctx, userID, id)
}

func TestService_Grant_returnsCreditedAchievement(t *testing.T) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewAchievementRepository(db)
	users := inmemdb.NewUserRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.UpsertAchievements(ctx, achievement.Catalog))
	svc := achievement.NewService(reseedingRepository{Repository: repo, points: 70})
	usr := testutil.CreateUser(t, users, "Maria", "maria", "")

	ach, awarded, err := svc.Grant(ctx, usr.ID, achievement.MemoryEasy)
	require.NoError(t, err)
	require.True(t, awarded)
	assert.Equal(t, 70, ach.Points)

	refreshed, err := users.GetUser(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, ach.Points, refreshed.TotalPoints)
}

func TestService_Grant_concurrent(t *testing.T) {
	svc, users := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, users, "Maria", "maria", "")

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, awarded, err := svc.Grant(ctx, usr.ID, achievement.Marathoner)
			if err != nil {
				t.Errorf("Grant() error = %v", err)
			}
			results <- awarded
		}()
	}
	wg.Wait()
	close(results)

	var awardedCount int
	for awarded := range results {
		if awarded {
			awardedCount++
		}
	}
	assert.Equal(t, 1, awardedCount)

	refreshed, err := users.GetUser(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, refreshed.TotalPoints)

	granted, err := svc.UserAchievements(ctx, usr.ID)
	require.NoError(t, err)
	assert.Len(t, granted, 1)
}

func TestService_UserAchievements_empty(t *testing.T) {
	svc, users := setup(t)
	usr := testutil.CreateUser(t, users, "Maria", "maria", "")

	granted, err := svc.UserAchievements(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.NotNil(t, granted)
	assert.Empty(t, granted)
}
