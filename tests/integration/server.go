package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	contactapp "github.com/shopfront/backend/internal/application/contact"
	identityapp "github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/application/notification"
	partnerapp "github.com/shopfront/backend/internal/application/partner"
	tradeapp "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/event"
	"github.com/shopfront/backend/internal/infrastructure/mail"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/pricelist"
	"github.com/shopfront/backend/internal/infrastructure/scheduler"
	"github.com/shopfront/backend/internal/infrastructure/storage"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/router"
	"github.com/shopfront/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestServer is the full API wired the way cmd/server does it, with mail
// kept in memory and in-process locks.
type TestServer struct {
	DB      *TestDB
	Handler http.Handler
	Mailer  *mail.LoggingMailer
	Archive *storage.MemoryObjectStorage
}

// NewTestServer wires every service against a fresh database. Events are
// delivered synchronously since the bus is never started.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	db := testDB.DB
	log := zap.NewNop()

	cfg := &config.Config{
		App: config.AppConfig{Name: "shopfront", Env: "test"},
		JWT: config.JWTConfig{
			Secret:                 "integration-secret-key-for-shopfront-tests",
			RefreshSecret:          "integration-refresh-secret-for-shopfront",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "shopfront-test",
			MaxRefreshCount:        10,
		},
		HTTP: config.HTTPConfig{MaxBodySize: 1 << 20},
		Import: config.ImportConfig{
			Workers:       1,
			QueueSize:     4,
			JobTimeout:    30 * time.Second,
			RetryAttempts: 2,
			RetryDelay:    10 * time.Millisecond,
			FetchTimeout:  5 * time.Second,
			MaxFileSize:   1 << 20,
			LockTTL:       time.Minute,
			HistorySize:   16,
		},
	}

	userRepo := persistence.NewGormUserRepository(db)
	tokenRepo := persistence.NewGormTokenRepository(db)
	shopRepo := persistence.NewGormShopRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	contactRepo := persistence.NewGormContactRepository(db)

	mailer := mail.NewLoggingMailer(log)
	bus := event.NewInMemoryEventBus(log)
	notification.Register(bus,
		notification.NewEmailConfirmationHandler(tokenRepo, mailer, log),
		notification.NewPasswordResetHandler(mailer, log),
		notification.NewOrderStatusHandler(userRepo, mailer, log),
	)

	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := auth.NewInMemoryTokenBlacklist()
	authService := identityapp.NewAuthService(userRepo, tokenRepo, jwtService, blacklist, log)
	authService.SetEventPublisher(bus)

	tradeScope := persistence.NewGormTradeTransactionScope(db)
	orderService := tradeapp.NewOrderService(orderRepo, contactRepo, userRepo, shopRepo, tradeScope, log)
	orderService.SetEventPublisher(bus)

	archive := storage.NewMemoryObjectStorage(8)
	importService := partnerapp.NewImportService(
		pricelist.NewHTTPFetcher(cfg.Import, log),
		persistence.NewGormImportTransactionScope(db),
		log,
	)
	importService.SetArchive(archive)
	updateService := partnerapp.NewUpdateService(userRepo, cache.NewInMemoryLocker(), cfg.Import, log)
	importScheduler, err := scheduler.NewScheduler(scheduler.ConfigFromImport(cfg.Import), importService, updateService, log)
	require.NoError(t, err)
	updateService.SetJobQueue(importScheduler)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, importScheduler.Start(ctx))
	t.Cleanup(func() {
		cancel()
		stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = importScheduler.Stop(stopCtx)
	})

	engine, err := router.NewEngine(router.EngineConfig{
		Config:     cfg,
		Logger:     log,
		JWTService: jwtService,
		Blacklist:  blacklist,
		Health:     handler.NewHealthHandler("test").AddCheck("database", testDB.Database),
	}, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(identityapp.NewUserService(userRepo, log)),
		Contact: handler.NewContactHandler(contactapp.NewContactService(contactRepo, log)),
		Partner: handler.NewPartnerHandler(partnerapp.NewShopService(shopRepo, userRepo, orderRepo, log), updateService),
		Catalog: handler.NewCatalogHandler(catalogapp.NewCatalogService(
			persistence.NewGormCategoryRepository(db),
			persistence.NewGormProductRepository(db),
			log,
		)),
		Basket: handler.NewBasketHandler(tradeapp.NewBasketService(orderRepo, userRepo, tradeScope, log)),
		Order:  handler.NewOrderHandler(orderService),
	})
	require.NoError(t, err)

	return &TestServer{
		DB:      testDB,
		Handler: engine,
		Mailer:  mailer,
		Archive: archive,
	}
}

// Do sends a JSON request to /api/v1 + path
func (ts *TestServer) Do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Do(t, ts.Handler, method, "/api/v1"+path, body, token)
}

var tokenPattern = regexp.MustCompile(`token is: (\S+)`)

// LastToken returns the token of the newest mail sent to email
func (ts *TestServer) LastToken(t *testing.T, email string) string {
	t.Helper()

	sent := ts.Mailer.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].To != email {
			continue
		}
		if m := tokenPattern.FindStringSubmatch(sent[i].Body); m != nil {
			return m[1]
		}
	}
	require.FailNow(t, "no token mailed", "recipient %s", email)
	return ""
}

// SignUp registers, confirms and logs in an account and returns its access
// token
func (ts *TestServer) SignUp(t *testing.T, email, password, userType string) string {
	t.Helper()

	w := ts.Do(t, http.MethodPost, "/user/register", map[string]string{
		"email":      email,
		"password":   password,
		"first_name": "Test",
		"last_name":  "User",
		"type":       userType,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.Do(t, http.MethodPost, "/user/register/confirm", map[string]string{
		"email": email,
		"token": ts.LastToken(t, email),
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.Do(t, http.MethodPost, "/user/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[handler.LoginResponse](t, w).Token
}
