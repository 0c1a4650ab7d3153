package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"

	server "github.com/kazz187/agentregistry/internal"
	"github.com/kazz187/agentregistry/internal/config"
	"github.com/kazz187/agentregistry/internal/permission"
	"github.com/kazz187/agentregistry/internal/profile"
	"github.com/kazz187/agentregistry/pkg/clog"
	"github.com/kazz187/agentregistry/pkg/storage"
)

var (
	app = kingpin.New("registry-server", "Agent permission and user profile registry")

	host = app.Flag("host", "Address to bind to (overrides HTTP_HOST)").String()
	port = app.Flag("port", "Port to bind to (overrides HTTP_PORT)").String()

	permissionsCmd = app.Command("permissions", "Serve the agent permission registry")
	profilesCmd    = app.Command("profiles", "Serve the user profile registry")

	showCmd      = app.Command("show", "Print a stored registry document")
	showDocument = showCmd.Arg("document", "Document to print").Required().Enum("permissions", "profiles")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}
	if *host != "" {
		env.HTTPHost = *host
	}
	if *port != "" {
		env.HTTPPort = *port
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	store, err := newStorage(context.Background(), env)
	if err != nil {
		slog.Error("failed to create storage", "type", env.StorageEnv.Type, "error", err)
		os.Exit(1)
	}

	permissionRepo := permission.NewRepository(store, env.PermissionsKey)
	profileRepo := profile.NewRepository(store, env.ProfilesKey)

	switch command {
	case permissionsCmd.FullCommand():
		serve(env, permission.NewServer(permission.NewRegistry(permissionRepo)))
	case profilesCmd.FullCommand():
		serve(env, profile.NewServer(profile.NewRegistry(profileRepo)))
	case showCmd.FullCommand():
		var doc any
		switch *showDocument {
		case "permissions":
			doc, _, err = permissionRepo.Open(context.Background())
		case "profiles":
			doc, _, err = profileRepo.Open(context.Background())
		}
		if err != nil {
			slog.Error("failed to open document", "document", *showDocument, "error", err)
			os.Exit(1)
		}
		if err := printJSON(doc); err != nil {
			slog.Error("failed to print document", "error", err)
			os.Exit(1)
		}
	}
}

func newStorage(ctx context.Context, env *config.Env) (storage.Storage, error) {
	switch env.StorageEnv.Type {
	case config.StorageTypeS3:
		var opts []storage.S3Option
		if env.S3Endpoint != "" {
			opts = append(opts, storage.WithS3Endpoint(env.S3Endpoint))
		}
		return storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region, opts...)
	default:
		return storage.NewLocalStorage(env.StorageEnv.BaseDir)
	}
}

func serve(env *config.Env, service server.Service) {
	srv := server.NewServer(env, service)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	return nil
}
