package gameserver

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/astroturfstudio/quizzi-go/protocol"
)

type roomCommandKind int

const (
	cmdJoin roomCommandKind = iota
	cmdRejoin
	cmdLeave
	cmdMessage
)

type roomCommand struct {
	kind   roomCommandKind
	client *client
	msg    protocol.ClientMessage

	// announceCreated marks the join of the room's creator, who receives
	// RoomCreated instead of JoinedRoom.
	announceCreated bool
}

// roomMember is one seat in a room. conn is nil while the player is
// disconnected; the seat survives so the player can rejoin.
type roomMember struct {
	id       string
	name     string
	score    int
	ready    bool
	answered bool
	conn     *client
}

// Room drives one quiz match. All fields below the command channel are owned
// by the run loop and must never be touched from outside it.
type Room struct {
	id       string
	name     string
	log      zerolog.Logger
	opts     Options
	bank     []bankQuestion
	commands chan roomCommand
	stopped  chan struct{}
	onClose  func(*Room)

	state        protocol.RoomStateTag
	members      []*roomMember
	round        int
	question     bankQuestion
	firstCorrect string
	cursor       float64
	finished     bool

	timer    *time.Timer
	ticker   *time.Ticker
	deadline time.Time
}

func newRoom(id, name string, opts Options, bank []bankQuestion, log zerolog.Logger, onClose func(*Room)) *Room {
	return &Room{
		id:       id,
		name:     name,
		log:      log.With().Str("room", id).Logger(),
		opts:     opts,
		bank:     bank,
		commands: make(chan roomCommand, 32),
		stopped:  make(chan struct{}),
		onClose:  onClose,
		state:    protocol.TagWaiting,
	}
}

// enqueue hands a command to the run loop. Commands arriving after the room
// stopped are dropped.
func (r *Room) enqueue(cmd roomCommand) {
	select {
	case r.commands <- cmd:
	case <-r.stopped:
	}
}

func (r *Room) run() {
	defer func() {
		r.stopTimers()
		close(r.stopped)
		if r.onClose != nil {
			r.onClose(r)
		}
	}()

	for {
		select {
		case cmd := <-r.commands:
			r.handleCommand(cmd)
		case <-r.tickC():
			r.tick()
		case <-r.timerC():
			r.onDeadline()
		}
		if r.finished {
			return
		}
	}
}

func (r *Room) tickC() <-chan time.Time {
	if r.ticker == nil {
		return nil
	}
	return r.ticker.C
}

func (r *Room) timerC() <-chan time.Time {
	if r.timer == nil {
		return nil
	}
	return r.timer.C
}

func (r *Room) handleCommand(cmd roomCommand) {
	switch cmd.kind {
	case cmdJoin:
		r.handleJoin(cmd.client, cmd.announceCreated)
	case cmdRejoin:
		r.handleRejoin(cmd.client)
	case cmdLeave:
		r.handleLeave(cmd.client)
	case cmdMessage:
		switch m := cmd.msg.(type) {
		case protocol.PlayerReady:
			r.handleReady(cmd.client)
		case protocol.PlayerAnswer:
			r.handleAnswer(cmd.client, m.AnswerID)
		}
	}
}

func (r *Room) handleJoin(c *client, created bool) {
	if r.memberByID(c.playerID) != nil {
		r.handleRejoin(c)
		return
	}
	if r.state != protocol.TagWaiting {
		c.sendMessage(protocol.JoinedRoom{RoomID: r.id, Success: false})
		return
	}

	r.members = append(r.members, &roomMember{id: c.playerID, name: c.name, conn: c})
	c.setRoom(r)

	if created {
		c.sendMessage(protocol.RoomCreated{RoomID: r.id})
	} else {
		c.sendMessage(protocol.JoinedRoom{RoomID: r.id, Success: true})
	}
	r.broadcast(protocol.RoomUpdate{State: r.state, Players: r.roster()})
	r.log.Info().Str("player", c.playerID).Int("players", len(r.members)).Msg("player joined")
}

func (r *Room) handleRejoin(c *client) {
	member := r.memberByID(c.playerID)
	if member == nil {
		r.handleJoin(c, false)
		return
	}

	member.conn = c
	c.setRoom(r)
	c.sendMessage(protocol.JoinedRoom{RoomID: r.id, Success: true})
	r.broadcast(protocol.PlayerReconnected{PlayerID: member.id})
	// Snapshot so the rejoiner catches up on the roster and phase.
	c.sendMessage(protocol.RoomUpdate{State: r.state, Players: r.roster()})
	r.log.Info().Str("player", c.playerID).Msg("player rejoined")
}

func (r *Room) handleLeave(c *client) {
	for i, member := range r.members {
		if member.conn != c {
			continue
		}
		member.conn = nil
		if r.state == protocol.TagWaiting {
			r.members = append(r.members[:i], r.members[i+1:]...)
			r.broadcast(protocol.RoomUpdate{State: r.state, Players: r.roster()})
		}
		r.broadcast(protocol.PlayerDisconnected{PlayerID: member.id, PlayerName: member.name})
		r.log.Info().Str("player", member.id).Msg("player disconnected")
		break
	}

	connected := 0
	for _, member := range r.members {
		if member.conn != nil {
			connected++
		}
	}
	if connected == 0 {
		r.log.Info().Msg("room empty, shutting down")
		r.finished = true
		return
	}

	// The disconnect may have been the last answer the round was waiting on.
	if r.state == protocol.TagPlaying {
		for _, m := range r.members {
			if m.conn != nil && !m.answered {
				return
			}
		}
		r.endRound()
	}
}

func (r *Room) handleReady(c *client) {
	member := r.memberByID(c.playerID)
	if member == nil || r.state != protocol.TagWaiting {
		return
	}
	member.ready = true

	if len(r.members) < r.opts.MinPlayers {
		return
	}
	for _, m := range r.members {
		if !m.ready {
			return
		}
	}
	r.startCountdown()
}

func (r *Room) handleAnswer(c *client, answerID int) {
	member := r.memberByID(c.playerID)
	if member == nil || r.state != protocol.TagPlaying || member.answered {
		return
	}
	member.answered = true

	correct := answerID == r.question.correctID
	if correct {
		member.score += answerScore
		if r.firstCorrect == "" {
			r.firstCorrect = member.id
		}
	}
	c.sendMessage(protocol.AnswerResult{PlayerID: member.id, AnswerID: answerID, Correct: correct})

	for _, m := range r.members {
		if m.conn != nil && !m.answered {
			return
		}
	}
	r.endRound()
}

func (r *Room) startCountdown() {
	r.state = protocol.TagCountdown
	r.broadcast(protocol.RoomUpdate{State: r.state, Players: r.roster()})
	r.armPhase(r.opts.CountdownDuration)
	r.log.Info().Msg("countdown started")
}

func (r *Room) startRound(n int) {
	r.round = n
	r.question = r.bank[(n-1)%len(r.bank)]
	r.firstCorrect = ""
	for _, m := range r.members {
		m.answered = false
	}

	r.armPhase(r.opts.RoundDuration)
	r.broadcast(protocol.RoundStarted{
		RoundNumber:     n,
		TimeRemainingMs: r.opts.RoundDuration.Milliseconds(),
		Question:        r.question.question,
	})
	r.log.Info().Int("round", n).Str("question", r.question.question.ID).Msg("round started")
}

func (r *Room) endRound() {
	r.stopTimers()
	r.broadcast(protocol.TimeUp{CorrectAnswerID: r.question.correctID})

	var winner *string
	if r.firstCorrect != "" {
		id := r.firstCorrect
		winner = &id
		step := 1.0 / float64(r.opts.Rounds)
		if id == r.members[0].id {
			r.cursor += step
		} else {
			r.cursor -= step
		}
	}
	r.broadcast(protocol.RoundEnded{
		CursorPosition:  r.cursor,
		CorrectAnswerID: r.question.correctID,
		WinnerPlayerID:  winner,
	})

	if r.round < r.opts.Rounds {
		r.startRound(r.round + 1)
		return
	}
	r.finishGame()
}

func (r *Room) finishGame() {
	r.state = protocol.TagClosed

	var winner *roomMember
	for _, m := range r.members {
		if winner == nil || m.score > winner.score {
			winner = m
		}
	}
	winnerID := ""
	if winner != nil {
		winnerID = winner.id
	}

	r.broadcast(protocol.GameOver{WinnerPlayerID: winnerID})
	r.broadcast(protocol.RoomUpdate{State: r.state, Players: r.roster()})
	r.broadcast(protocol.RoomClosed{Reason: "game over"})
	r.log.Info().Str("winner", winnerID).Msg("game over")
	r.finished = true
}

func (r *Room) tick() {
	remaining := time.Until(r.deadline).Milliseconds()
	if remaining < 0 {
		remaining = 0
	}
	switch r.state {
	case protocol.TagCountdown:
		r.broadcast(protocol.CountdownTimeUpdate{RemainingMs: remaining})
	case protocol.TagPlaying:
		r.broadcast(protocol.TimeUpdate{RemainingMs: remaining})
	}
}

func (r *Room) onDeadline() {
	switch r.state {
	case protocol.TagCountdown:
		r.state = protocol.TagPlaying
		r.broadcast(protocol.RoomUpdate{State: r.state, Players: r.roster()})
		r.startRound(1)
	case protocol.TagPlaying:
		r.endRound()
	}
}

// armPhase schedules the phase deadline and restarts the tick stream.
func (r *Room) armPhase(d time.Duration) {
	r.stopTimers()
	r.deadline = time.Now().Add(d)
	r.timer = time.NewTimer(d)
	r.ticker = time.NewTicker(r.opts.TickInterval)
}

func (r *Room) stopTimers() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
}

func (r *Room) memberByID(id string) *roomMember {
	for _, m := range r.members {
		if m.id == id {
			return m
		}
	}
	return nil
}

func (r *Room) roster() []protocol.Player {
	players := make([]protocol.Player, 0, len(r.members))
	for _, m := range r.members {
		players = append(players, protocol.Player{ID: m.id, Name: m.name, Score: m.score})
	}
	return players
}

func (r *Room) broadcast(msg protocol.ServerMessage) {
	data, err := protocol.Encode(msg)
	if err != nil {
		r.log.Error().Err(err).Str("type", string(msg.MessageType())).Msg("failed to encode broadcast")
		return
	}
	for _, m := range r.members {
		if m.conn != nil {
			m.conn.sendFrame(data)
		}
	}
}

// answerScore is the points awarded for a correct answer.
const answerScore = 100
