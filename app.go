package main

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/database"
	"github.com/CrowderSoup/taskboard/notice"
	"github.com/CrowderSoup/taskboard/services"
)

var errNotLoggedIn = errors.New("not logged in, run `taskboard login` first")

// app wires the services every command works with.
type app struct {
	cfg       Config
	log       *zap.Logger
	db        *sqlx.DB
	sessions  *database.SessionStore
	data      *database.DataService
	client    *api.Client
	identity  *services.IdentityStore
	auth      *services.AuthService
	workspace *services.WorkspaceService
	tasks     *services.TaskService
	board     *board.Model
}

// newApp opens the local store and builds the services. notifier receives
// every notice; boardOpts are passed on to the board model.
func newApp(cfg Config, log *zap.Logger, notifier notice.Notifier, boardOpts ...board.Option) (*app, error) {
	db, err := database.InitDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	notifier = notice.Multi{notice.NewLogger(log.Named("notice")), notifier}

	sessions := database.NewSessionStore(db, database.WithExpiry(services.TokenExpiry(cfg.TokenExpiration)))
	client := api.NewClient(cfg.APIBaseURL, sessions,
		api.WithTimeout(cfg.APITimeout),
		api.WithLogger(log.Named("api")),
		api.WithSessionExpired(func() {
			notifier.Notify(notice.New(notice.LevelWarning, notice.MsgSessionExpired, nil))
		}),
	)

	identity := services.NewIdentityStore(client, sessions, sessions, log.Named("identity"))
	opts := append([]board.Option{
		board.WithDebounce(cfg.PersistDebounce),
		board.WithLogger(log.Named("board")),
	}, boardOpts...)
	model := board.New(client, notifier, opts...)

	a := &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		sessions:  sessions,
		data:      database.NewDataService(db),
		client:    client,
		identity:  identity,
		auth:      services.NewAuthService(client, sessions, identity, notifier, cfg.JWTSecret, cfg.TokenExpiration, log.Named("auth")),
		workspace: services.NewWorkspaceService(client, identity, notifier, log.Named("workspace")),
		tasks:     services.NewTaskService(client, model, identity, notifier, log.Named("tasks")),
		board:     model,
	}
	return a, nil
}

// requireUser loads the current user, failing when nobody is logged in.
func (a *app) requireUser(ctx context.Context) (*api.User, error) {
	user, err := a.identity.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNotLoggedIn
	}
	return user, nil
}

// close writes pending status changes and closes the store.
func (a *app) close() {
	a.board.Close()
	if err := a.db.Close(); err != nil {
		a.log.Warn("failed to close database", zap.Error(err))
	}
}
