package cachesvc

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/user"
)

// rankingKey is a hash holding one cached ranking per limit.
const rankingKey = "mangues:ranking"

// NewRedisClient connects to the redis server at url (redis://[:password@]host:port[/db]).
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// rankingRepository serves QueryRanking from redis and everything else from the wrapped repository.
// Redis failures are logged and never fail the request.
type rankingRepository struct {
	user.Repository

	client *redis.Client
	ttl    time.Duration
	logger core.Logger
}

var _ user.Repository = (*rankingRepository)(nil) // interface compliance check

func NewRankingRepository(repo user.Repository, client *redis.Client, ttl time.Duration, logger core.Logger) user.Repository {
	return &rankingRepository{Repository: repo, client: client, ttl: ttl, logger: logger}
}

func (repo *rankingRepository) QueryRanking(ctx context.Context, limit int) ([]user.RankingEntry, error) {
	field := strconv.Itoa(limit)

	raw, err := repo.client.HGet(ctx, rankingKey, field).Bytes()
	switch {
	case err == nil:
		var entries []user.RankingEntry
		if err = json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
		repo.logger.Warn("decoding cached ranking", errors.Wrap(err, "decoding cached ranking"), map[string]interface{}{"limite": field})
	case err != redis.Nil:
		repo.logger.Warn("reading cached ranking", errors.Wrap(err, "reading cached ranking"), map[string]interface{}{"limite": field})
	}

	entries, err := repo.Repository.QueryRanking(ctx, limit)
	if err != nil {
		return nil, err
	}
	if raw, err = json.Marshal(entries); err == nil {
		_, err = repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, rankingKey, field, raw)
			pipe.Expire(ctx, rankingKey, repo.ttl)
			return nil
		})
	}
	if err != nil {
		repo.logger.Warn("caching ranking", errors.Wrap(err, "caching ranking"), map[string]interface{}{"limite": field})
	}
	return entries, nil
}

func (repo *rankingRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	created, err := repo.Repository.CreateUser(ctx, usr)
	if err == nil {
		invalidateRanking(ctx, repo.client, repo.logger)
	}
	return created, err
}

// grantInvalidator drops the cached ranking whenever a grant moves a point total.
type grantInvalidator struct {
	achievement.Repository

	client *redis.Client
	logger core.Logger
}

var _ achievement.Repository = (*grantInvalidator)(nil) // interface compliance check

func NewGrantInvalidator(repo achievement.Repository, client *redis.Client, logger core.Logger) achievement.Repository {
	return &grantInvalidator{Repository: repo, client: client, logger: logger}
}

func (repo *grantInvalidator) GrantAchievement(ctx context.Context, userID int, id string) (achievement.Achievement, bool, error) {
	ach, awarded, err := repo.Repository.GrantAchievement(ctx, userID, id)
	if err == nil && awarded {
		invalidateRanking(ctx, repo.client, repo.logger)
	}
	return ach, awarded, err
}

func invalidateRanking(ctx context.Context, client *redis.Client, logger core.Logger) {
	if err := client.Del(ctx, rankingKey).Err(); err != nil {
		logger.Warn("invalidating cached ranking", errors.Wrap(err, "invalidating cached ranking"))
	}
}
