package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/accountkit/accountkit/internal/config"
	"github.com/accountkit/accountkit/internal/db"
	"github.com/accountkit/accountkit/internal/hash"
	"github.com/accountkit/accountkit/internal/notifier"
	"github.com/accountkit/accountkit/internal/repository"
	"github.com/accountkit/accountkit/internal/sentinel"
	"github.com/accountkit/accountkit/internal/service"
	"github.com/accountkit/accountkit/internal/token"
)

type App struct {
	Cfg       *config.Config
	DB        *sqlx.DB
	Users     repository.UserRepository
	Lifecycle *service.AccountLifecycle

	redisSentinel *sentinel.Redis
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	users := repository.NewUserRepository(database)

	var (
		sent      sentinel.Sentinel
		redisSent *sentinel.Redis
	)
	switch cfg.SentinelBackend {
	case "redis":
		redisSent, err = sentinel.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect sentinel redis: %v", err)
		}
		sent = redisSent
	default:
		sent = sentinel.NewMemory()
	}

	emails := notifier.NewResend(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)

	lifecycle := service.NewAccountLifecycle(
		users,
		hash.Bcrypt{},
		token.Rand{},
		sent,
		emails,
		service.Options{
			SignupCacheTTL:         cfg.SignupCacheTTL,
			ResetTokenExpiry:       cfg.ResetTokenExpiry,
			ConfirmationCodeLength: cfg.ConfirmationCodeLength,
			ResetTokenLength:       cfg.ResetTokenLength,
		},
	)

	return &App{
		Cfg:           cfg,
		DB:            database,
		Users:         users,
		Lifecycle:     lifecycle,
		redisSentinel: redisSent,
	}, nil
}

func (a *App) Close() error {
	if a.redisSentinel != nil {
		err := a.redisSentinel.Close()
		if err != nil {
			return err
		}
	}
	return db.Close(a.DB)
}
