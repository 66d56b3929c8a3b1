package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/vitor518/Mangues/apps/api/echo"
	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/fact"
	"github.com/vitor518/Mangues/core/progress"
	"github.com/vitor518/Mangues/core/user"
	cachesvc "github.com/vitor518/Mangues/services/cache"
	logsvc "github.com/vitor518/Mangues/services/logger"
	"github.com/vitor518/Mangues/storage/database"
	inmemdb "github.com/vitor518/Mangues/storage/database/inmem"
	sqlxrepos "github.com/vitor518/Mangues/storage/database/sqlx"
)

type repositories struct {
	users        user.Repository
	facts        fact.Repository
	achievements achievement.Repository
	prepare      func(ctx context.Context) error // nil when the engine needs no preparation
	close        func() error
}

type app struct {
	server echoapi.Server
	achSvc *achievement.Service
}

var bootstrapRetry = 10 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up storage
	repos, err := setUpRepositories(conf, dbLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// optional ranking cache
	if conf.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
		client, rErr := cachesvc.NewRedisClient(ctx, conf.Redis.URL)
		cancel()
		if rErr != nil {
			logger.Warn("ranking cache disabled", rErr)
		} else {
			defer func() { _ = client.Close() }()
			repos.users = cachesvc.NewRankingRepository(repos.users, client, conf.Redis.RankingTTL, logger)
			repos.achievements = cachesvc.NewGrantInvalidator(repos.achievements, client, logger)
		}
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	a := newApp(conf, logger, repos)

	// storage is prepared in the background; requests needing it fail until it is ready
	bootCtx, stopBoot := context.WithCancel(context.Background())
	defer stopBoot()
	go bootstrap(bootCtx, repos, a.achSvc, logger, bootstrapRetry)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("dbEngine").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	go func() {
		a.server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-a.server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-a.server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = a.server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = a.server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newApp(conf *core.Config, logger core.Logger, repos repositories) app {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	fact.InitValidators(validate, translator)

	usrSvc := user.NewService(repos.users)
	achSvc := achievement.NewService(repos.achievements)
	progSvc := progress.NewService(progress.Deps{
		Users:        repos.users,
		Facts:        fact.NewStore(repos.facts),
		Achievements: achSvc,
		Validate:     validate,
		Logger:       logger,
	})

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			AchievementSvc: achSvc,
			ProgressSvc:    progSvc,
			Validate:       validate,
			Translator:     translator,
		},
	)
	return app{server: server, achSvc: achSvc}
}

// bootstrap prepares the storage and seeds the achievement catalog.
// It retries every `retry` until both succeed (true) or ctx is done (false).
func bootstrap(ctx context.Context, repos repositories, achSvc *achievement.Service, logger core.Logger, retry time.Duration) bool {
	for {
		var err error
		if repos.prepare != nil {
			err = repos.prepare(ctx)
		}
		if err == nil {
			err = achSvc.Seed(ctx)
		}
		if err == nil {
			logger.Info("storage ready")
			return true
		}
		logger.Error("preparing storage", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(retry):
		}
	}
}

func setUpRepositories(conf *core.Config, logger core.Logger) (repositories, error) {
	switch conf.Database.Engine {
	case core.EngineMemory:
		db, err := inmemdb.Open()
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			users:        inmemdb.NewUserRepository(db),
			facts:        inmemdb.NewFactRepository(db),
			achievements: inmemdb.NewAchievementRepository(db),
			close:        func() error { return nil },
		}, nil

	case core.EnginePostgres:
		db, err := database.Connect(conf)
		if err != nil {
			return repositories{}, err
		}
		prepare := func(ctx context.Context) error {
			// the app user may not be allowed to create databases; migrating decides
			if err := database.CreateIfNotExist(ctx, conf); err != nil {
				logger.Warn("creating database", err)
			}
			if err := database.Ping(ctx, db); err != nil {
				return err
			}
			return database.Migrate(db)
		}
		return repositories{
			users:        sqlxrepos.NewUserRepository(db),
			facts:        sqlxrepos.NewFactRepository(db),
			achievements: sqlxrepos.NewAchievementRepository(db),
			prepare:      prepare,
			close:        db.Close,
		}, nil

	default:
		return repositories{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}
