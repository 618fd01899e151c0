package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mcupsell/upsell-board/api/internal/config"
	mongodoc "github.com/mcupsell/upsell-board/api/internal/infrastructure/mongo"
	adminhttp "github.com/mcupsell/upsell-board/api/internal/interfaces/http/admin"
	commonhttp "github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	publichttp "github.com/mcupsell/upsell-board/api/internal/interfaces/http/public"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Server is the composition root. It owns the Mongo client, the change feed
// pumps and the per-location schedulers, and injects everything into the
// public and admin handler sets.
type Server struct {
	logger       *log.Logger
	client       *mongo.Client
	database     *mongo.Database
	locations    *mongodoc.LocationRepository
	employees    *mongodoc.EmployeeRepository
	shifts       *mongodoc.ShiftRepository
	transactions *mongodoc.TransactionRepository
	menuItems    *mongodoc.MenuItemRepository
	managers     *mongodoc.ManagerAccessRepository
	changeFeed   *mongodoc.ChangeFeed
	tracker      *application.Tracker
	schedulers   *application.SchedulerRegistry
	location     *time.Location

	shiftCollection       string
	transactionCollection string

	jwtConfig      config.JWTConfig
	jwtAudience    string
	tokenTTL       time.Duration
	addr           string
	allowedOrigins []string
}

type authenticatedUser = commonhttp.AuthenticatedUser

// New resolves the dependency graph from the configuration and a connected
// Mongo client.
func New(cfg config.Config, client *mongo.Client) *Server {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.FixedZone("CET", 1*60*60)
		cfg.ServerLog.Printf("timezone %s could not be loaded: %v, falling back to CET", cfg.Timezone, err)
	}

	srv := &Server{
		logger:                cfg.ServerLog,
		client:                client,
		database:              client.Database(cfg.MongoDatabase),
		location:              loc,
		shiftCollection:       cfg.ShiftCollection,
		transactionCollection: cfg.TransactionCollection,
		jwtConfig:             cfg.JWT,
		jwtAudience:           cfg.JWTAudience,
		tokenTTL:              cfg.TokenTTL,
		addr:                  cfg.Addr,
		allowedOrigins:        append([]string(nil), cfg.AllowedOrigins...),
	}

	srv.locations = mongodoc.NewLocationRepository(srv.database, cfg.LocationCollection)
	srv.employees = mongodoc.NewEmployeeRepository(srv.database, cfg.EmployeeCollection)
	srv.shifts = mongodoc.NewShiftRepository(srv.database, cfg.ShiftCollection)
	srv.transactions = mongodoc.NewTransactionRepository(srv.database, cfg.TransactionCollection)
	srv.menuItems = mongodoc.NewMenuItemRepository(srv.database, cfg.MenuItemCollection)
	srv.managers = mongodoc.NewManagerAccessRepository(srv.database, cfg.ManagerAccessCollection)
	srv.changeFeed = mongodoc.NewChangeFeed(srv.database, cfg.ShiftCollection, cfg.TransactionCollection, cfg.ServerLog)

	srv.tracker = application.NewTracker(srv.shifts, srv.employees, cfg.ServerLog)
	aggregator := application.NewAggregator(srv.transactions, srv.menuItems, cfg.ServerLog)
	srv.schedulers = application.NewSchedulerRegistry(srv.tracker, aggregator, srv.locations, loc, cfg.Debounce, cfg.QueryTimeout, cfg.ServerLog)

	return srv
}

// Run starts the change feed pumps and the HTTP server, then blocks until
// shutdown.
func (s *Server) Run() error {
	pumpCtx, stopPumps := context.WithCancel(context.Background())
	defer stopPumps()
	go s.pumpChanges(pumpCtx, s.shiftCollection)
	go s.pumpChanges(pumpCtx, s.transactionCollection)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:       s.logger,
		Locations:    s.locations,
		Employees:    s.employees,
		Shifts:       s.shifts,
		Transactions: s.transactions,
		MenuItems:    s.menuItems,
		Tracker:      s.tracker,
		Schedulers:   s.schedulers,
		IssueToken:   s.issueToken,
	})
	publicHandler.Register(router, s.authMiddleware, s.optionalAuthMiddleware)

	adminHandler := adminhttp.NewHandler(adminhttp.Config{
		Logger:         s.logger,
		ManagerAccess:  s.managers,
		Locations:      s.locations,
		Employees:      s.employees,
		Transactions:   s.transactions,
		MenuItems:      s.menuItems,
		Timezone:       s.location,
		IssueToken:     s.issueToken,
		AuthMiddleware: s.authMiddleware,
	})
	router.Route("/admin", adminHandler.Register)

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	waitForShutdown(httpServer, errChan, s, stopPumps)
	return nil
}

// pumpChanges keeps one change feed subscription alive for the collection and
// routes every event into the tracker and the scheduler registry. The feed is
// a staleness signal only, so dropping and re-establishing it on error is
// safe as long as a recompute is forced afterwards.
func (s *Server) pumpChanges(ctx context.Context, collection string) {
	backoff := time.Second
	for {
		events, release, err := s.changeFeed.Watch(ctx, collection)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Printf("change feed %s: watch failed: %v, retrying in %s", collection, err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for change := range events {
			s.tracker.Apply(change)
			s.schedulers.Notify(change.LocationID())
		}
		release()
		if ctx.Err() != nil {
			return
		}
		// The stream may have missed events while down.
		s.schedulers.Notify("")
		s.logger.Printf("change feed %s: stream closed, reconnecting", collection)
	}
}

// issueToken signs a token for the given user. Staff tokens carry the shift
// they were issued for; manager tokens leave it empty.
func (s *Server) issueToken(user authenticatedUser, shiftID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := &authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtConfig.Issuer,
			Subject:   subjectFor(user),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name:       user.Name,
		Role:       user.Role,
		LocationID: user.LocationID,
		ShiftID:    shiftID,
	}
	if s.jwtAudience != "" {
		claims.Audience = jwt.ClaimStrings{s.jwtAudience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtConfig.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func subjectFor(user authenticatedUser) string {
	if user.Role == commonhttp.RoleManager {
		return "manager:" + user.LocationID
	}
	return user.EmployeeID
}

// authMiddleware validates the Bearer token and places the authenticated
// user (and, for staff, the issuing shift) on the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, shiftID, err := s.userFromRequest(r)
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		ctx := commonhttp.ContextWithUser(r.Context(), user)
		if shiftID != "" {
			ctx = commonhttp.ContextWithShiftID(ctx, shiftID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuthMiddleware attaches the user when a valid token is present and
// lets the request through anonymously otherwise. The wall display watches
// the leaderboard stream without any token.
func (s *Server) optionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, shiftID, err := s.userFromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := commonhttp.ContextWithUser(r.Context(), user)
		if shiftID != "" {
			ctx = commonhttp.ContextWithShiftID(ctx, shiftID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) userFromRequest(r *http.Request) (authenticatedUser, string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return authenticatedUser{}, "", fmt.Errorf("missing Authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return authenticatedUser{}, "", fmt.Errorf("a Bearer token is required")
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if tokenString == "" {
		return authenticatedUser{}, "", fmt.Errorf("access token is empty")
	}

	claims, err := s.parseAuthToken(tokenString)
	if err != nil {
		return authenticatedUser{}, "", err
	}

	user := authenticatedUser{
		Name:       claims.Name,
		LocationID: claims.LocationID,
		Role:       claims.Role,
	}
	if claims.Role == commonhttp.RoleStaff {
		user.EmployeeID = claims.Subject
	}
	return user, claims.ShiftID, nil
}

// parseAuthToken verifies the signature and the issuer/audience claims.
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.jwtConfig.Secret, nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("access token is invalid")
	}

	if s.jwtConfig.Issuer != "" && claims.Issuer != s.jwtConfig.Issuer {
		return nil, fmt.Errorf("access token is invalid")
	}
	if s.jwtAudience != "" && !contains(claims.Audience, s.jwtAudience) {
		return nil, fmt.Errorf("access token is invalid")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("access token is invalid")
	}
	if claims.Role != commonhttp.RoleStaff && claims.Role != commonhttp.RoleManager {
		return nil, fmt.Errorf("access token is invalid")
	}

	return claims, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

type authClaims struct {
	jwt.RegisteredClaims
	Name       string `json:"name,omitempty"`
	Role       string `json:"role"`
	LocationID string `json:"locationId"`
	ShiftID    string `json:"shiftId,omitempty"`
}

// withCORS grants the configured origins access and answers preflights.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && len(allowed) > 0 && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler reports Mongo reachability for the load balancer probe.
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("JSON encode failed: %v", err)
	}
}

// shutdown disconnects the Mongo client with a bounded timeout.
func (s *Server) shutdown(ctx context.Context) {
	s.schedulers.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("Mongo disconnect error: %v", err)
	}
}

// waitForShutdown blocks on ListenAndServe failure or an OS signal and runs
// the graceful stop sequence: HTTP server first, then the change feed pumps
// and the schedulers.
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server, stopPumps context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.logger.Fatalf("server exited abnormally: %v", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("received signal %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("server shutdown error: %v", err)
		}
	}

	stopPumps()
	srv.shutdown(context.Background())
}
