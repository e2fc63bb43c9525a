package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"

	"github.com/unkn0wn-root/aimcache"
	aimslog "github.com/unkn0wn-root/aimcache/log/slog"
	"github.com/unkn0wn-root/aimcache/sloghooks"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "aimcache",
		Usage:   "inspect and edit cache entries",
		Version: versioninfo.Short(),
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "cache-host",
			Usage:   "cache hostname, or comma-separated seeds in cluster mode",
			EnvVars: []string{aimcache.EnvHost},
		},
		&cli.IntFlag{
			Name:    "cache-port",
			EnvVars: []string{aimcache.EnvPort},
		},
		&cli.StringFlag{
			Name:    "cache-password",
			EnvVars: []string{aimcache.EnvPassword},
		},
		&cli.BoolFlag{
			Name:    "cache-cluster",
			Usage:   "connect in cluster mode",
			EnvVars: []string{aimcache.EnvCluster},
		},
		&cli.DurationFlag{
			Name:  "op-timeout",
			Usage: "bound for every cache call",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			Value:   "warn",
			EnvVars: []string{"LOG_LEVEL"},
		},
	}
	app.Commands = []*cli.Command{
		cmdGet,
		cmdPut,
		cmdHas,
		cmdDel,
		cmdPop,
		cmdHGet,
		cmdHSet,
		cmdPartner,
		cmdTemplate,
	}
	return app.Run(args)
}

func configLogging(cctx *cli.Context) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// openCache connects a cache for V using the global flags. The caller must
// Close it.
func openCache[V any](cctx *cli.Context) (aimcache.Cache[V], error) {
	logger := configLogging(cctx)
	c, err := aimcache.New[V](cacheOptions[V](aimcache.Config{
		Host:     cctx.String("cache-host"),
		Port:     cctx.Int("cache-port"),
		Password: cctx.String("cache-password"),
		Cluster:  cctx.Bool("cache-cluster"),
	}, cctx.Duration("op-timeout"), logger))
	if err != nil {
		return nil, err
	}
	if err := c.Run(cctx.Context); err != nil {
		return nil, err
	}
	return c, nil
}

// cacheOptions logs connection events through the cache Logger only; the
// hooks cover swallowed failures.
func cacheOptions[V any](cfg aimcache.Config, opTimeout time.Duration, logger *slog.Logger) aimcache.Options[V] {
	return aimcache.Options[V]{
		Config: cfg,
		Logger: aimslog.New(logger),
		Hooks: sloghooks.New(logger, sloghooks.Options{
			Redact:         func(k string) string { return k },
			SkipConnection: true,
		}),
		OpTimeout: opTimeout,
	}
}

func closeCache[V any](c aimcache.Cache[V]) {
	if err := c.Close(context.Background()); err != nil {
		slog.Warn("closing cache", "err", err)
	}
}
