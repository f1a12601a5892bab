package router

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	notifymem "privescreen/internal/adapters/notify/memory"
	mem "privescreen/internal/adapters/storage/memory"
	pg "privescreen/internal/adapters/storage/postgres"
	"privescreen/internal/domain/centers"
	"privescreen/internal/domain/codes"
	"privescreen/internal/domain/results"
	"privescreen/internal/domain/teststandards"
	"privescreen/internal/domain/wallets"
	"privescreen/internal/middleware"
	"privescreen/internal/platform/metrics"
	"privescreen/internal/ports/auth"
	"privescreen/internal/ports/notify"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // nil enables dev header auth

	// Optional: when set, use Postgres. Otherwise in-memory.
	DB *sql.DB

	// Optional: where completion notices go. Defaults to the recording
	// notifier, which is only suitable for dev and tests.
	Notifier notify.SponsorNotifier

	Logger zerolog.Logger

	// Upper bound for requested code validity, in days.
	MaxValidityDays int
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Logger))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	var (
		standardsRepo teststandards.Repository
		centersRepo   centers.Repository
		walletsRepo   wallets.Repository
		codesRepo     codes.Repository
		resultsRepo   results.Repository
	)

	// Without an explicit DB, try env (dev/handoff convenience).
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		standardsRepo = pg.NewStandardsRepo(db)
		centersRepo = pg.NewCentersRepo(db)
		walletsRepo = pg.NewWalletsRepo(db)
		codesRepo = pg.NewCodesRepo(db)
		resultsRepo = pg.NewResultsRepo(db)
	} else {
		standardsRepo = mem.NewStandardsRepo()
		centersRepo = mem.NewCentersRepo()
		walletsRepo = mem.NewWalletsRepo()
		codesRepo = mem.NewCodesRepo()
		resultsRepo = mem.NewResultsRepo()
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifymem.NewNotifier()
	}

	// Services per module
	standardsSvc := teststandards.NewService(standardsRepo)
	centersSvc := centers.NewService(centersRepo)
	walletsSvc := wallets.NewService(walletsRepo)
	codesSvc := codes.NewService(codesRepo, standardsSvc, centersSvc, walletsSvc, opts.MaxValidityDays)
	resultsSvc := results.NewService(resultsRepo, codesSvc, notifier, opts.Logger)

	// Routes per module
	teststandards.RegisterRoutes(r, standardsSvc)
	centers.RegisterRoutes(r, centersSvc)
	wallets.RegisterRoutes(r, walletsSvc)
	codes.RegisterRoutes(r, codesSvc)
	results.RegisterRoutes(r, resultsSvc, centersSvc)

	return r
}
