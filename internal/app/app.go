package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lifequest/lifequest/internal/config"
	"github.com/lifequest/lifequest/internal/db"
	"github.com/lifequest/lifequest/internal/generator"
	"github.com/lifequest/lifequest/internal/repository"
	"github.com/lifequest/lifequest/internal/service"
)

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	AuthService  *service.AuthService
	QuestService *service.QuestService
	XPService    *service.XPService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	gen, err := generator.New(cfg.Generator())
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize generator: %v", err)
	}

	return NewWithDB(cfg, database, gen), nil
}

// NewWithDB wires services on top of an open, migrated database.
func NewWithDB(cfg *config.Config, database *sqlx.DB, gen generator.Generator) *App {
	policy := cfg.Policy()

	// Repositories
	userRepository := repository.NewUserRepository(database)

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry)
	questService := service.NewQuestService(database, policy, gen, gen, service.NewDraftStore())
	xpService := service.NewXPService(database, policy)

	return &App{
		Cfg:          cfg,
		DB:           database,
		AuthService:  authService,
		QuestService: questService,
		XPService:    xpService,
	}
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
