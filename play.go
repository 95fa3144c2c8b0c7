package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/astroturfstudio/quizzi-go/game/engine"
	"github.com/astroturfstudio/quizzi-go/game/service"
	"github.com/astroturfstudio/quizzi-go/protocol"
)

// runConsole drives an interactive play session: a printer goroutine renders
// server activity while the main loop reads commands from in.
func runConsole(ctx context.Context, client *service.Client, in io.Reader, out io.Writer) error {
	states, cancelStates := client.States()
	defer cancelStates()
	effects, cancelEffects := client.Effects()
	defer cancelEffects()
	status, cancelStatus := client.ConnectionStatus()
	defer cancelStatus()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case st, ok := <-states:
				if !ok {
					return
				}
				printState(out, st)
			case e, ok := <-effects:
				if !ok {
					return
				}
				printEffect(out, e)
			case s, ok := <-status:
				if !ok {
					return
				}
				fmt.Fprintf(out, "** connection: %s", s.Status)
				if s.Attempt > 0 {
					fmt.Fprintf(out, " (attempt %d)", s.Attempt)
				}
				fmt.Fprintln(out)
			}
		}
	}()

	fmt.Fprintln(out, "Type 'help' for available commands.")
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		verb, arg := parseCommand(scanner.Text())
		switch verb {
		case "":
		case "create":
			name := arg
			if name == "" {
				name = "Quiz Room"
			}
			client.CreateRoom(name, "general", "classic")
		case "join":
			if arg == "" {
				fmt.Fprintln(out, "usage: join <room-id>")
				continue
			}
			client.JoinRoom(arg)
		case "ready":
			client.PlayerReady()
		case "answer":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintln(out, "usage: answer <number>")
				continue
			}
			client.SubmitAnswer(n)
		case "state":
			printState(out, client.RoomState())
		case "help":
			fmt.Fprintln(out, "commands: create [name] | join <room-id> | ready | answer <n> | state | quit")
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q, type 'help'\n", verb)
		}
	}
	return scanner.Err()
}

// parseCommand splits an input line into a lowercase verb and its argument.
func parseCommand(line string) (verb, arg string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	return strings.ToLower(fields[0]), strings.Join(fields[1:], " ")
}

func printState(out io.Writer, st engine.RoomState) {
	fmt.Fprintf(out, "== room: %s", st.Phase)
	if len(st.Players) > 0 {
		fmt.Fprint(out, " |")
		for _, p := range st.Players {
			fmt.Fprintf(out, " %s:%d", p.Name, p.Score)
		}
	}
	fmt.Fprintln(out)
}

func printEffect(out io.Writer, e engine.Effect) {
	switch m := e.Msg.(type) {
	case protocol.RoomCreated:
		fmt.Fprintf(out, ">> room created: %s (share this id)\n", m.RoomID)
	case protocol.JoinedRoom:
		if m.Success {
			fmt.Fprintf(out, ">> joined room %s\n", m.RoomID)
		} else {
			fmt.Fprintf(out, ">> could not join room %s\n", m.RoomID)
		}
	case protocol.CountdownTimeUpdate:
		fmt.Fprintf(out, ">> starting in %.0fs\n", float64(m.RemainingMs)/1000)
	case protocol.RoundStarted:
		fmt.Fprintf(out, ">> round %d: %s\n", m.RoundNumber, m.Question.Text)
		for _, a := range m.Question.Answers {
			fmt.Fprintf(out, "   [%d] %s\n", a.ID, a.Text)
		}
	case protocol.TimeUpdate:
		// Quiet; one line per second would drown the prompt.
	case protocol.TimeUp:
		fmt.Fprintf(out, ">> time up, correct answer was [%d]\n", m.CorrectAnswerID)
	case protocol.AnswerResult:
		if m.Correct {
			fmt.Fprintln(out, ">> correct!")
		} else {
			fmt.Fprintln(out, ">> wrong answer")
		}
	case protocol.RoundEnded:
		if m.WinnerPlayerID != nil {
			fmt.Fprintf(out, ">> round won by %s\n", *m.WinnerPlayerID)
		} else {
			fmt.Fprintln(out, ">> round ended in a draw")
		}
	case protocol.GameOver:
		fmt.Fprintf(out, ">> game over, winner: %s\n", m.WinnerPlayerID)
	case protocol.PlayerDisconnected:
		fmt.Fprintf(out, ">> player disconnected: %s\n", m.PlayerID)
	case protocol.PlayerReconnected:
		fmt.Fprintf(out, ">> player reconnected: %s\n", m.PlayerID)
	case protocol.RoomClosed:
		fmt.Fprintf(out, ">> room closed: %s\n", m.Reason)
	case protocol.Error:
		fmt.Fprintf(out, ">> server error: %s\n", m.Message)
	}
}
