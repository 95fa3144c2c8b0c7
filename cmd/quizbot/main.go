// Command quizbot runs automated quiz players against a server.
//
// The first bot creates a room (unless -room is given) and the rest join it.
// Every bot readies up, answers each round with the selected strategy, and
// the command exits when the match ends. It doubles as a load and soak tool
// for the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/astroturfstudio/quizzi-go/game/config"
	"github.com/astroturfstudio/quizzi-go/game/engine"
	"github.com/astroturfstudio/quizzi-go/game/service"
	"github.com/astroturfstudio/quizzi-go/protocol"
)

var (
	serverURL = flag.String("server", "ws://localhost:8080", "quiz server URL")
	botCount  = flag.Int("bots", 2, "number of bots to run")
	roomID    = flag.String("room", "", "join an existing room instead of creating one")
	strategy  = flag.String("strategy", "random", "answer strategy: random or first")
	seed      = flag.Int64("seed", 0, "random seed, 0 picks one from the clock")
	timeout   = flag.Duration("timeout", 5*time.Minute, "give up if the match has not finished by then")
	debug     = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	strat, err := newStrategy(*strategy)
	if err != nil {
		log.Fatal().Err(err).Msg("bad strategy")
	}
	if *botCount < 1 {
		log.Fatal().Int("bots", *botCount).Msg("need at least one bot")
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	log.Info().Int("bots", *botCount).Str("strategy", strat.Name()).Int64("seed", rngSeed).Msg("starting bots")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	// The creator bot publishes the room id for the rest.
	roomC := make(chan string, 1)
	if *roomID != "" {
		roomC <- *roomID
	}

	var wg sync.WaitGroup
	for i := 0; i < *botCount; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b := &bot{
				name:     fmt.Sprintf("bot-%d", n),
				creator:  n == 0 && *roomID == "",
				strategy: strat,
				rng:      rand.New(rand.NewSource(rngSeed + int64(n))),
				roomC:    roomC,
				log:      log.With().Str("bot", fmt.Sprintf("bot-%d", n)).Logger(),
			}
			if err := b.run(ctx); err != nil {
				log.Error().Err(err).Str("bot", b.name).Msg("bot failed")
			}
		}(i)
	}

	wg.Wait()
	if ctx.Err() == context.DeadlineExceeded {
		log.Error().Msg("match did not finish before the timeout")
		os.Exit(1)
	}
	log.Info().Msg("all bots finished")
}

// bot is one automated player.
type bot struct {
	name     string
	creator  bool
	strategy Strategy
	rng      *rand.Rand
	roomC    chan string
	log      zerolog.Logger
}

func (b *bot) run(ctx context.Context) error {
	cfg := config.Default()
	cfg.ServerURL = *serverURL
	cfg.PlayerName = b.name

	client, err := service.NewClientWithIdentity(cfg, &service.MemoryIdentityStore{}, b.log)
	if err != nil {
		return err
	}
	defer client.Close()

	states, cancelStates := client.States()
	defer cancelStates()
	effects, cancelEffects := client.Effects()
	defer cancelEffects()

	if err := client.Start(ctx); err != nil {
		return err
	}

	if b.creator {
		client.CreateRoom("bot arena", "general", "classic")
	} else {
		select {
		case id := <-b.roomC:
			b.roomC <- id // put it back for the next bot
			client.JoinRoom(id)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	readied := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case st, ok := <-states:
			if !ok {
				return nil
			}
			// Ready up only once the whole pack is in the room, otherwise an
			// early all-ready roster starts the match without the rest.
			if st.Phase == engine.PhaseWaiting && !readied && len(st.Players) >= *botCount {
				readied = true
				client.PlayerReady()
			}
			if st.Phase == engine.PhaseClosed {
				b.logScores(st)
				return nil
			}

		case e, ok := <-effects:
			if !ok {
				return nil
			}
			switch m := e.Msg.(type) {
			case protocol.RoomCreated:
				b.log.Info().Str("room", m.RoomID).Msg("room created")
				b.roomC <- m.RoomID
			case protocol.RoundStarted:
				// A small human-ish delay keeps answers from landing in
				// lockstep across bots.
				delay := time.Duration(b.rng.Intn(250)) * time.Millisecond
				answer := b.strategy.Pick(m.Question, b.rng)
				time.AfterFunc(delay, func() { client.SubmitAnswer(answer) })
			case protocol.RoomClosed:
				return nil
			}
		}
	}
}

func (b *bot) logScores(st engine.RoomState) {
	for _, p := range st.Players {
		b.log.Info().Str("player", p.Name).Int("score", p.Score).Msg("final score")
	}
}
