// Command quizzi is a realtime multiplayer quiz game over websockets.
//
// It supports three modes:
//  1. "play"  - interactive terminal client against a quiz server
//  2. "serve" - hosts a local quiz server for play and development
//  3. "bot"   - see cmd/quizbot for automated players
//
// Flags control the server address, player identity, debug logging, and the
// pacing of hosted matches. A .env file in the working directory is loaded on
// startup when present.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/astroturfstudio/quizzi-go/game/config"
	"github.com/astroturfstudio/quizzi-go/game/service"
	"github.com/astroturfstudio/quizzi-go/gameserver"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Quizzi"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	cmd := &cli.Command{
		Name:    "quizzi",
		Usage:   "realtime multiplayer quiz game",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			playCommand(),
			serveCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the console logger shared by all modes.
func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "connect to a quiz server and play interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Usage: "quiz server URL",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "player display name",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a JSON configuration file",
			},
			&cli.StringFlag{
				Name:  "identity",
				Usage: "path to the persisted player identity file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger(cmd.Bool("debug"))

			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			if v := cmd.String("server"); v != "" {
				cfg.ServerURL = v
			}
			if v := cmd.String("name"); v != "" {
				cfg.PlayerName = v
			}
			if v := cmd.String("identity"); v != "" {
				cfg.IdentityFile = v
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			client, err := service.NewClient(cfg, log)
			if err != nil {
				return err
			}
			defer client.Close()

			runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := client.Start(runCtx); err != nil {
				return err
			}
			return runConsole(runCtx, client, os.Stdin, os.Stdout)
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "host a local quiz server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "localhost:8080",
				Usage: "listen address",
			},
			&cli.IntFlag{
				Name:  "rounds",
				Value: 3,
				Usage: "rounds per match",
			},
			&cli.DurationFlag{
				Name:  "round-duration",
				Value: 15 * time.Second,
				Usage: "time budget per round",
			},
			&cli.DurationFlag{
				Name:  "countdown",
				Value: 5 * time.Second,
				Usage: "pre-game countdown",
			},
			&cli.IntFlag{
				Name:  "min-players",
				Value: 1,
				Usage: "players required before a match can start",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger(cmd.Bool("debug"))

			opts := gameserver.DefaultOptions()
			opts.Rounds = int(cmd.Int("rounds"))
			opts.RoundDuration = cmd.Duration("round-duration")
			opts.CountdownDuration = cmd.Duration("countdown")
			opts.MinPlayers = int(cmd.Int("min-players"))

			addr := cmd.String("addr")
			httpServer := &http.Server{
				Addr:         addr,
				Handler:      gameserver.New(log, opts),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errC := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Msg("quiz server listening")
				log.Info().Msgf("websocket: ws://%s/game?playerId=<id>", addr)
				errC <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errC:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-runCtx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
}
