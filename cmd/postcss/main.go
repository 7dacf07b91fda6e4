package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/postcss/postcss-loader/config"
	"github.com/postcss/postcss-loader/loader"
	"github.com/postcss/postcss-loader/state"
)

var version = "dev"

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	if cmd.Bool("verbose") {
		env.Logging.ConsoleLogger.Level = "debug"
	}
	if dst := cmd.String("log"); dst != "" {
		env.Logging.FileLogger = config.LoggerConfig{Level: "debug", Destination: dst, Mode: "overwrite"}
	}
	if env.Log, err = env.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	// .env values feed the runtime context the library never reads
	// process environment on its own
	_ = godotenv.Load()
	env.Env = cmd.String("env")
	if env.Env == "" {
		env.Env = os.Getenv("POSTCSS_ENV")
	}

	env.OutDir = cmd.String("out-dir")
	switch cmd.String("map") {
	case "file":
		env.SourceMap = loader.SourceMapOption{Enabled: true}
	case "inline":
		env.SourceMap = loader.SourceMapOption{Enabled: true, Inline: true}
	case "", "off":
	default:
		return ctx, fmt.Errorf("unsupported --map value %q", cmd.String("map"))
	}

	env.Loader = loader.New(loader.WithLogger(env.Log))
	registerBuiltins(env.Loader.Registry())

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", version),
		zap.String("runtime", runtime.Version()))
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()))
	}
	env.RestoreStdLog()
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:    "postcss",
		Usage:   "transform CSS files through a configured plugin pipeline",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a config file or directory"},
			&cli.StringFlag{Name: "env", Aliases: []string{"e"}, Usage: "environment name for the runtime context"},
			&cli.StringFlag{Name: "out-dir", Aliases: []string{"o"}, Usage: "directory for transformed output", Value: "."},
			&cli.StringFlag{Name: "map", Aliases: []string{"m"}, Usage: "source map mode: off, file or inline", Value: "off"},
			&cli.StringFlag{Name: "log", Usage: "write a debug log to this file"},
			&cli.BoolFlag{Name: "verbose", Usage: "debug output on console"},
		},
		Before:    initializeAppContext,
		After:     destroyAppContext,
		Action:    processFiles,
		ArgsUsage: "FILE [FILE...]",
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", e)
		}
		os.Exit(1)
	}
}
