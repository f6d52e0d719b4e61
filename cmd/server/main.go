package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"attendance/console/foundation/web"
	"attendance/console/internal/auth"
	"attendance/console/internal/commands"
	"attendance/console/internal/middleware"
	"attendance/console/internal/pkg/config"
	"attendance/console/internal/pkg/repository/postgresql"
	"attendance/console/internal/router"

	"github.com/ardanlabs/conf"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			os.Exit(0)
		}
		slog.Error("startup", "error", err)
		os.Exit(1)
	}
}

type settings struct {
	Web struct {
		Address         string        `conf:"default:0.0.0.0:8080"`
		ReadTimeout     time.Duration `conf:"default:10s"`
		WriteTimeout    time.Duration `conf:"default:30s"`
		ShutdownTimeout time.Duration `conf:"default:10s"`
	}
	Config   string        `conf:"default:config.yaml,help:path of the yaml configuration"`
	TokenTTL time.Duration `conf:"default:12h"`
	Debug    bool          `conf:"help:log sql queries and use text logs"`
}

func run() error {
	var s settings
	if err := conf.Parse(os.Args[1:], "CONSOLE", &s); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, uerr := conf.Usage("CONSOLE", &s)
			if uerr != nil {
				return errors.Wrap(uerr, "generating usage")
			}
			fmt.Println(usage)
			return err
		}
		return errors.Wrap(err, "parsing settings")
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, nil)
	if s.Debug {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	cfg, err := config.NewConfig(s.Config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.New(cfg, s.Debug)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := commands.MigrateUP(ctx, db, log); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, holiday cache disabled until it recovers", "addr", cfg.RedisAddr, "error", err)
	}

	a, err := auth.New(cfg.JWTKey, s.TokenTTL)
	if err != nil {
		return err
	}

	app := web.NewApp(log, middleware.Logger(log))
	if err := router.NewRouter(app, db, rdb, a, cfg).Init(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         s.Web.Address,
		Handler:      app,
		ReadTimeout:  s.Web.ReadTimeout,
		WriteTimeout: s.Web.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("listening", "address", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
	case <-ctx.Done():
		log.Info("shutdown started")
		sctx, cancel := context.WithTimeout(context.Background(), s.Web.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			srv.Close()
			return errors.Wrap(err, "graceful shutdown")
		}
	}

	return nil
}
