package gameserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/astroturfstudio/quizzi-go/protocol"
	transport "github.com/astroturfstudio/quizzi-go/transport/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Options tune the pace of a match. Zero values fall back to defaults.
type Options struct {
	CountdownDuration time.Duration
	RoundDuration     time.Duration
	TickInterval      time.Duration
	Rounds            int
	MinPlayers        int
}

// DefaultOptions returns the pacing used for interactive play.
func DefaultOptions() Options {
	return Options{
		CountdownDuration: 5 * time.Second,
		RoundDuration:     15 * time.Second,
		TickInterval:      time.Second,
		Rounds:            3,
		MinPlayers:        1,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.CountdownDuration <= 0 {
		o.CountdownDuration = def.CountdownDuration
	}
	if o.RoundDuration <= 0 {
		o.RoundDuration = def.RoundDuration
	}
	if o.TickInterval <= 0 {
		o.TickInterval = def.TickInterval
	}
	if o.Rounds <= 0 {
		o.Rounds = def.Rounds
	}
	if o.MinPlayers <= 0 {
		o.MinPlayers = def.MinPlayers
	}
	return o
}

// Server hosts quiz rooms behind a websocket endpoint.
type Server struct {
	log      zerolog.Logger
	opts     Options
	bank     []bankQuestion
	router   *mux.Router
	upgrader websocket.Upgrader

	mu          sync.Mutex
	rooms       map[string]*Room
	playerRooms map[string]*Room
}

// New creates a server with the built-in question bank.
func New(log zerolog.Logger, opts Options) *Server {
	s := &Server{
		log:  log,
		opts: opts.withDefaults(),
		bank: defaultBank,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rooms:       make(map[string]*Room),
		playerRooms: make(map[string]*Room),
	}

	s.router = mux.NewRouter()
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc(transport.GamePath, s.handleGame)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		playerID = uuid.NewString()
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "Player-" + shortID(playerID)
	}

	c := &client{
		server:   s,
		conn:     conn,
		send:     make(chan []byte, 64),
		playerID: playerID,
		name:     name,
	}
	s.log.Info().Str("player", playerID).Msg("player connected")

	go c.writePump()
	go c.readPump()
}

func (s *Server) dispatch(c *client, msg protocol.ClientMessage) {
	switch m := msg.(type) {
	case protocol.CreateRoom:
		s.createRoom(c, m)
	case protocol.JoinRoom:
		if room := s.room(m.RoomID); room != nil {
			s.recordPlayerRoom(c.playerID, room)
			room.enqueue(roomCommand{kind: cmdJoin, client: c})
		} else {
			c.sendMessage(protocol.JoinedRoom{RoomID: m.RoomID, Success: false})
		}
	case protocol.RejoinRoom:
		if room := s.room(m.RoomID); room != nil {
			s.recordPlayerRoom(c.playerID, room)
			room.enqueue(roomCommand{kind: cmdRejoin, client: c})
		} else {
			c.sendMessage(protocol.JoinedRoom{RoomID: m.RoomID, Success: false})
		}
	case protocol.PlayerReconnect:
		if room := s.playerRoom(c.playerID); room != nil {
			room.enqueue(roomCommand{kind: cmdRejoin, client: c})
		}
	default:
		if room := c.currentRoom(); room != nil {
			room.enqueue(roomCommand{kind: cmdMessage, client: c, msg: msg})
		} else {
			c.sendMessage(protocol.Error{Message: "not in a room"})
		}
	}
}

func (s *Server) createRoom(c *client, m protocol.CreateRoom) {
	name := m.RoomName
	if name == "" {
		name = "Quiz Room"
	}

	room := newRoom(uuid.NewString(), name, s.opts, s.bank, s.log, s.removeRoom)

	s.mu.Lock()
	s.rooms[room.id] = room
	s.playerRooms[c.playerID] = room
	s.mu.Unlock()

	go room.run()
	room.enqueue(roomCommand{kind: cmdJoin, client: c, announceCreated: true})
	s.log.Info().Str("room", room.id).Str("name", name).Msg("room created")
}

func (s *Server) room(id string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[id]
}

func (s *Server) playerRoom(playerID string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerRooms[playerID]
}

func (s *Server) recordPlayerRoom(playerID string, room *Room) {
	s.mu.Lock()
	s.playerRooms[playerID] = room
	s.mu.Unlock()
}

func (s *Server) removeRoom(room *Room) {
	s.mu.Lock()
	delete(s.rooms, room.id)
	for playerID, r := range s.playerRooms {
		if r == room {
			delete(s.playerRooms, playerID)
		}
	}
	s.mu.Unlock()
	s.log.Info().Str("room", room.id).Msg("room removed")
}

func shortID(id string) string {
	if len(id) > 4 {
		return id[:4]
	}
	return id
}

// client is one websocket connection with its read and write pumps.
type client struct {
	server   *Server
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	name     string

	mu   sync.Mutex
	room *Room
}

func (c *client) setRoom(r *Room) {
	c.mu.Lock()
	c.room = r
	c.mu.Unlock()
}

func (c *client) currentRoom() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// sendFrame queues an encoded frame. A client that cannot keep up is
// dropped; its read pump observes the closed connection and leaves the room.
func (c *client) sendFrame(data []byte) {
	select {
	case c.send <- data:
	default:
		c.conn.Close()
	}
}

func (c *client) sendMessage(msg protocol.ServerMessage) {
	data, err := protocol.Encode(msg)
	if err != nil {
		c.server.log.Error().Err(err).Str("type", string(msg.MessageType())).Msg("failed to encode message")
		return
	}
	c.sendFrame(data)
}

// readPump decodes inbound frames and dispatches them until the connection
// fails or closes.
func (c *client) readPump() {
	defer func() {
		if room := c.currentRoom(); room != nil {
			room.enqueue(roomCommand{kind: cmdLeave, client: c})
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.log.Warn().Err(err).Str("player", c.playerID).Msg("websocket read failed")
			}
			return
		}

		msg, derr := protocol.DecodeClient(data)
		if derr != nil {
			c.server.log.Warn().Err(derr).Str("player", c.playerID).Msg("undecodable client frame")
			c.sendMessage(protocol.Error{Message: derr.Error()})
			continue
		}
		c.server.dispatch(c, msg)
	}
}

// writePump writes queued frames, one message per frame, and keeps the
// connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
