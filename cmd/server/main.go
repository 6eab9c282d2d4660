package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/botworks/club-server/identity"
	"github.com/botworks/club-server/internal/config"
	"github.com/botworks/club-server/internal/metrics"
	"github.com/botworks/club-server/notifications"
	"github.com/botworks/club-server/roles"
	"github.com/botworks/club-server/server"
	"github.com/botworks/club-server/store"
	"github.com/botworks/club-server/token"
)

func main() {
	_ = godotenv.Load()

	c := config.New()
	logger := newLogger(c.GetEnv())

	for {
		if err := run(c, logger); err != nil {
			logger.Error().Err(err).Msg("server exited with error")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	logger.Info().Msg("server stopped")
}

func run(c config.Config, logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	sqlStore, err := store.NewSQLiteStore(c.GetSQLitePath(), logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer sqlStore.Close()

	tokens, err := newTokenManager(c, logger)
	if err != nil {
		return err
	}

	resolver, err := roles.NewResolver(c.GetSuperAdminEmails, sqlStore, tokens, roles.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("building role resolver: %w", err)
	}
	logger.Info().Int("superAdminEmails", len(c.GetSuperAdminEmails())).Msg("allow-list loaded")

	notifService, err := notifications.NewService(sqlStore, notifications.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("building notification service: %w", err)
	}

	srv, err := server.New(c, logger, server.Deps{
		Verifier:      newVerifier(c, logger),
		Tokens:        tokens,
		Resolver:      resolver,
		Notifications: notifService,
		Metrics:       metrics.NewCollector(),
	})
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer, logger)
	go cleanupLoop(tokens, logger)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func newLogger(env string) zerolog.Logger {
	if env == "DEV" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// newTokenManager wires the credential manager with a Redis-backed
// revocation horizon store when REDIS_ADDR is set, falling back to the
// in-process store for single-instance deployments.
func newTokenManager(c config.Config, logger zerolog.Logger) (*token.Manager, error) {
	options := []token.ManagerOption{
		token.WithIssuer(c.GetBaseURL()),
		token.WithLifetime(c.GetSessionLifetime()),
	}

	if addr := c.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		options = append(options, token.WithRevokedSubjectStore(
			token.NewRedisRevokedSubjectStore(client, c.GetSessionLifetime()),
		))
		logger.Info().Str("addr", addr).Msg("using redis revocation store")
	}

	tokens, err := token.New([]byte(c.GetCredentialSecret()), options...)
	if err != nil {
		return nil, fmt.Errorf("building token manager: %w", err)
	}
	return tokens, nil
}

// newVerifier builds the OIDC verifier when an issuer is configured. A nil
// verifier disables login but leaves the rest of the server functional.
func newVerifier(c config.Config, logger zerolog.Logger) identity.Verifier {
	issuer := c.GetIdentityIssuer()
	if issuer == "" {
		logger.Warn().Msg("IDENTITY_ISSUER not set, login endpoints disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	verifier, err := identity.NewOIDCVerifier(ctx, issuer,
		c.GetIdentityClientID(), c.GetIdentityClientSecret(), c.GetBaseURL()+"/callback")
	if err != nil {
		logger.Error().Err(err).Str("issuer", issuer).Msg("identity provider discovery failed, login endpoints disabled")
		return nil
	}
	return verifier
}

func listenAndServe(server *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("server.ListenAndServe")
	}
}

// cleanupLoop periodically drops revocation horizons that can no longer
// affect any live credential.
func cleanupLoop(tokens *token.Manager, logger zerolog.Logger) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		tokens.CleanupRevokedSubjects(context.Background())
		logger.Debug().Msg("revocation horizon cleanup complete")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
