package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/envguard/internal/application"
	"github.com/eugenenazirov/envguard/internal/config"
	"github.com/eugenenazirov/envguard/internal/envguard"
	"github.com/eugenenazirov/envguard/internal/environ"
	"github.com/eugenenazirov/envguard/internal/logging"
)

var signalNotify = signal.Notify

type cli struct {
	app *kingpin.Application

	configFile *string
	manifest   *string
	envFiles   *[]string
	encoding   *string
	quiet      *bool
	logLevel   *string

	check *kingpin.CmdClause

	exec    *kingpin.CmdClause
	command *[]string

	serve          *kingpin.CmdClause
	port           *string
	rateLimitRPS   *float64
	rateLimitBurst *int
}

func newCLI() *cli {
	app := kingpin.New("envguard", "Validated, immutable environment variables described by a YAML manifest")
	c := &cli{app: app}

	c.configFile = app.Flag("config", "Path to YAML configuration file").String()
	c.manifest = app.Flag("manifest", "Path to the environment manifest").Short('m').String()
	c.envFiles = app.Flag("env-file", "Environment file to read; repeat to add files, when a key appears in several files the first file wins").Short('f').Strings()
	c.encoding = app.Flag("encoding", "Character encoding of the environment files").String()
	c.quiet = app.Flag("quiet", "Suppress informational loader output").Short('q').Bool()
	c.logLevel = app.Flag("log-level", "Log level (debug, info, warn, error)").String()

	c.check = app.Command("check", "Validate the environment and print the declared variables").Default()

	c.exec = app.Command("exec", "Validate the environment, then run a command with the shared variables exported")
	c.command = c.exec.Arg("command", "Command and arguments to run").Required().Strings()

	c.serve = app.Command("serve", "Validate the environment and serve a read-only HTTP view of it")
	c.port = c.serve.Flag("port", "HTTP port exposed by the service").String()
	c.rateLimitRPS = c.serve.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	c.rateLimitBurst = c.serve.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	return c
}

// overrides maps the parsed flags onto config overrides. Unset flags leave
// lower precedence sources untouched.
func (c *cli) overrides() *config.CLIOverrides {
	o := &config.CLIOverrides{
		ConfigFile: *c.configFile,
		EnvFiles:   *c.envFiles,
	}
	if *c.manifest != "" {
		o.Manifest = c.manifest
	}
	if *c.encoding != "" {
		o.Encoding = c.encoding
	}
	if *c.quiet {
		o.Quiet = c.quiet
	}
	if *c.logLevel != "" {
		o.LogLevel = c.logLevel
	}
	if *c.port != "" {
		o.Port = c.port
	}
	if *c.rateLimitRPS >= 0 {
		o.RateLimitRPS = c.rateLimitRPS
	}
	if *c.rateLimitBurst >= 0 {
		o.RateLimitBurst = c.rateLimitBurst
	}
	return o
}

func main() {
	c := newCLI()
	command := kingpin.MustParse(c.app.Parse(os.Args[1:]))

	cfg, err := config.Load(c.overrides())
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	switch command {
	case c.check.FullCommand():
		env, err := application.LoadEnvironment(cfg, logger)
		if err != nil {
			logger.Fatal("environment is invalid", zap.Error(err))
		}
		printEnvironment(os.Stdout, env)

	case c.exec.FullCommand():
		if _, err := application.LoadEnvironment(cfg, logger); err != nil {
			logger.Fatal("environment is invalid", zap.Error(err))
		}
		code, err := runCommand(*c.command, environ.OS())
		if err != nil {
			logger.Fatal("failed to run command", zap.Strings("command", *c.command), zap.Error(err))
		}
		_ = logger.Sync()
		os.Exit(code)

	case c.serve.FullCommand():
		app, err := application.New(cfg, logger)
		if err != nil {
			logger.Fatal("failed to initialize application", zap.Error(err))
		}
		if err := app.Start(); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
		shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
	}
}

// printEnvironment writes one line per declared variable. Values are printed
// for shared variables only.
func printEnvironment(w io.Writer, env *envguard.Container) {
	for _, key := range env.Keys() {
		if !env.IsShared(key) {
			_, _ = fmt.Fprintf(w, "%s (not shared)\n", key)
			continue
		}
		value, _ := env.String(key)
		_, _ = fmt.Fprintf(w, "%s=%s\n", key, value)
	}
}

// runCommand runs argv with table as its environment and returns its exit
// code. A command that starts and exits non-zero is not an error.
func runCommand(argv []string, table environ.Table) (int, error) {
	if len(argv) == 0 {
		return 0, errors.New("no command given")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = environ.Pairs(table.Snapshot())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}

// shutdown blocks until an interrupt or termination signal arrives, then
// drains the server within timeout and force-closes it if draining fails.
func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server",
		zap.String("signal", sig.String()),
		zap.Duration("grace_period", timeout),
	)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
		return
	}
	logger.Info("server stopped")
}
