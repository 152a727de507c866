package app

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/marketconnect/llm-session-bridge/app/internal/capture"
	"github.com/marketconnect/llm-session-bridge/app/internal/config"
	"github.com/marketconnect/llm-session-bridge/app/internal/dispatcher"
	"github.com/marketconnect/llm-session-bridge/app/internal/engine"
	"github.com/marketconnect/llm-session-bridge/app/internal/engine/workspace"
	"github.com/marketconnect/llm-session-bridge/app/internal/handlers"
	"github.com/marketconnect/llm-session-bridge/app/internal/logger"
	"github.com/marketconnect/llm-session-bridge/app/internal/queue"
	"github.com/marketconnect/llm-session-bridge/app/internal/repository"
	"github.com/marketconnect/llm-session-bridge/app/internal/session"

	_ "github.com/mattn/go-sqlite3"
)

// App holds all application dependencies
type App struct {
	Config         *config.Config
	Repository     repository.Repository
	Buffer         *capture.Buffer
	SessionManager *session.SessionManager
	Queue          *queue.Queue
	Dispatcher     *dispatcher.Dispatcher

	closeOnce sync.Once
	closeErr  error
}

// New creates all application dependencies from cfg. A nil eng selects the
// workspace engine configured by cfg.Engine.Command.
func New(cfg *config.Config, eng engine.Engine) (*App, error) {
	var repo repository.Repository
	var err error

	logger.Info("initializing usage ledger", "type", cfg.Repository.Type)

	switch cfg.Repository.Type {
	case "sqlite":
		repo, err = repository.NewSQLiteRepository(cfg.Repository.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
	case "memory":
		fallthrough
	default:
		repo = repository.NewMemoryRepository()
	}

	if err := repo.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	if eng == nil {
		eng, err = workspace.New(cfg.Engine.Command)
		if err != nil {
			repo.Close()
			return nil, err
		}
	}

	buffer := capture.NewBuffer()

	var opts []session.Option
	if cfg.Session.DefaultWorkDir != "" {
		opts = append(opts, session.WithDefaultWorkDir(cfg.Session.DefaultWorkDir))
	}
	sessionManager := session.NewSessionManager(eng, buffer, repo, opts...)

	queueInstance := queue.NewQueue(cfg.Session.CommandsPerMin)

	return &App{
		Config:         cfg,
		Repository:     repo,
		Buffer:         buffer,
		SessionManager: sessionManager,
		Queue:          queueInstance,
		Dispatcher:     dispatcher.NewDispatcher(sessionManager, buffer, queueInstance),
	}, nil
}

// Close cleans up all dependencies. Calling it more than once is safe.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		if a.Queue != nil {
			a.Queue.Close()
		}
		if a.SessionManager != nil {
			if err := a.SessionManager.Close(); err != nil {
				a.closeErr = fmt.Errorf("failed to close session manager: %w", err)
			}
		}
	})
	return a.closeErr
}

// Handler returns the HTTP handler serving every endpoint
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	handlers.Register(mux,
		handlers.NewCommandHandler(a.Dispatcher),
		handlers.NewSessionStatusHandler(a.SessionManager),
	)
	return mux
}

// Run serves HTTP until the server fails.
func (a *App) Run() error {
	addr := fmt.Sprintf(":%d", a.Config.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", "addr", addr)
	logger.Info("available endpoints",
		"bind", "POST /startup",
		"commands", "POST /aider/{ask,code,add,drop,diff}",
		"ledger", "GET /sessions/status",
	)
	return srv.ListenAndServe()
}
