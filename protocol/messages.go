package protocol

// Type is the wire discriminant identifying a message variant.
type Type string

// Client-to-server message types.
const (
	TypeCreateRoom      Type = "create_room"
	TypeJoinRoom        Type = "join_room"
	TypeRejoinRoom      Type = "rejoin_room"
	TypePlayerReady     Type = "player_ready"
	TypePlayerAnswer    Type = "player_answer"
	TypePlayerReconnect Type = "player_reconnected"
)

// Server-to-client message types.
const (
	TypeRoomCreated         Type = "room_created"
	TypeJoinedRoom          Type = "joined_room"
	TypeCountdownTimeUpdate Type = "countdown_time_update"
	TypeRoomUpdate          Type = "room_update"
	TypeTimeUpdate          Type = "time_update"
	TypeTimeUp              Type = "time_up"
	TypeAnswerResult        Type = "answer_result"
	TypeRoundStarted        Type = "round_started"
	TypeRoundEnded          Type = "round_ended"
	TypeGameOver            Type = "game_over"
	TypePlayerDisconnected  Type = "player_disconnected"
	TypePlayerReconnected   Type = "player_reconnected"
	TypeRoomClosed          Type = "room_closed"
	TypeError               Type = "error"
)

// RoomStateTag is the server's name for a room lifecycle phase, carried in
// RoomUpdate frames.
type RoomStateTag string

const (
	TagWaiting   RoomStateTag = "WAITING"
	TagCountdown RoomStateTag = "COUNTDOWN"
	TagPlaying   RoomStateTag = "PLAYING"
	TagPaused    RoomStateTag = "PAUSED"
	TagClosed    RoomStateTag = "CLOSED"
)

// knownStateTags lists every tag a well-formed RoomUpdate may carry.
var knownStateTags = map[RoomStateTag]bool{
	TagWaiting:   true,
	TagCountdown: true,
	TagPlaying:   true,
	TagPaused:    true,
	TagClosed:    true,
}

// Message is implemented by every wire message in either direction.
type Message interface {
	MessageType() Type
}

// ClientMessage is a message sent from the client to the game server.
// The catalog is closed: only the variants in this package exist.
type ClientMessage interface {
	Message
	isClient()
}

// ServerMessage is a message sent from the game server to the client.
// The catalog is closed: only the variants in this package exist.
type ServerMessage interface {
	Message
	isServer()
}

// Player is a participant in a room as reported by the server.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Answer is one selectable answer of a question.
type Answer struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Question is the quiz question payload of a round.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

// Client-to-server messages. These are immutable by convention: callers
// construct a value, hand it to Send, and never mutate it afterwards.

// CreateRoom asks the server to open a new room.
type CreateRoom struct {
	RoomName   string `json:"roomName"`
	CategoryID string `json:"categoryId"`
	GameType   string `json:"gameType"`
}

// JoinRoom asks the server to add the player to an existing room.
type JoinRoom struct {
	RoomID string `json:"roomId"`
}

// RejoinRoom re-associates an already-known player identity with a room
// after a reconnection.
type RejoinRoom struct {
	RoomID string `json:"roomId"`
}

// PlayerReady signals that the player is ready to start.
type PlayerReady struct{}

// PlayerAnswer submits the player's answer for the current round.
type PlayerAnswer struct {
	AnswerID int `json:"answerId"`
}

// PlayerReconnect informs the server that the identified player has
// re-established its transport after a drop.
type PlayerReconnect struct {
	PlayerID string `json:"playerId"`
}

func (CreateRoom) MessageType() Type      { return TypeCreateRoom }
func (JoinRoom) MessageType() Type        { return TypeJoinRoom }
func (RejoinRoom) MessageType() Type      { return TypeRejoinRoom }
func (PlayerReady) MessageType() Type     { return TypePlayerReady }
func (PlayerAnswer) MessageType() Type    { return TypePlayerAnswer }
func (PlayerReconnect) MessageType() Type { return TypePlayerReconnect }

func (CreateRoom) isClient()      {}
func (JoinRoom) isClient()        {}
func (RejoinRoom) isClient()      {}
func (PlayerReady) isClient()     {}
func (PlayerAnswer) isClient()    {}
func (PlayerReconnect) isClient() {}

// Server-to-client messages.

// RoomCreated confirms room creation and carries the assigned room id.
type RoomCreated struct {
	RoomID string `json:"roomId"`
}

// JoinedRoom reports the outcome of a join or rejoin request.
type JoinedRoom struct {
	RoomID  string `json:"roomId"`
	Success bool   `json:"success"`
}

// CountdownTimeUpdate is a tick of the pre-game countdown.
type CountdownTimeUpdate struct {
	RemainingMs int64 `json:"remainingMs"`
}

// RoomUpdate is the authoritative room snapshot. It is the only message that
// can change the client's room state.
type RoomUpdate struct {
	Players []Player     `json:"players"`
	State   RoomStateTag `json:"state"`
}

// TimeUpdate is a tick of the in-round timer.
type TimeUpdate struct {
	RemainingMs int64 `json:"remainingMs"`
}

// TimeUp reports that the round timer expired before all answers arrived.
type TimeUp struct {
	CorrectAnswerID int `json:"correctAnswerId"`
}

// AnswerResult echoes a player's answer and whether it was correct.
type AnswerResult struct {
	PlayerID string `json:"playerId"`
	AnswerID int    `json:"answerId"`
	Correct  bool   `json:"correct"`
}

// RoundStarted opens a new round with its question and time budget.
type RoundStarted struct {
	RoundNumber     int      `json:"roundNumber"`
	TimeRemainingMs int64    `json:"timeRemainingMs"`
	Question        Question `json:"question"`
}

// RoundEnded closes the current round. WinnerPlayerID is absent on a draw.
type RoundEnded struct {
	CursorPosition  float64 `json:"cursorPosition"`
	CorrectAnswerID int     `json:"correctAnswerId"`
	WinnerPlayerID  *string `json:"winnerPlayerId,omitempty"`
}

// GameOver announces the final winner of the match.
type GameOver struct {
	WinnerPlayerID string `json:"winnerPlayerId"`
}

// PlayerDisconnected reports that a player's transport dropped. The session
// also synthesizes this message locally when reconnection is exhausted.
type PlayerDisconnected struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// PlayerReconnected reports that a previously disconnected player is back.
type PlayerReconnected struct {
	PlayerID string `json:"playerId"`
}

// RoomClosed reports that the server closed the room.
type RoomClosed struct {
	Reason string `json:"reason"`
}

// Error is a server-reported failure. Locally detected decode failures are
// surfaced on the inbound stream as this variant as well.
type Error struct {
	Message string `json:"message"`
}

func (RoomCreated) MessageType() Type         { return TypeRoomCreated }
func (JoinedRoom) MessageType() Type          { return TypeJoinedRoom }
func (CountdownTimeUpdate) MessageType() Type { return TypeCountdownTimeUpdate }
func (RoomUpdate) MessageType() Type          { return TypeRoomUpdate }
func (TimeUpdate) MessageType() Type          { return TypeTimeUpdate }
func (TimeUp) MessageType() Type              { return TypeTimeUp }
func (AnswerResult) MessageType() Type        { return TypeAnswerResult }
func (RoundStarted) MessageType() Type        { return TypeRoundStarted }
func (RoundEnded) MessageType() Type          { return TypeRoundEnded }
func (GameOver) MessageType() Type            { return TypeGameOver }
func (PlayerDisconnected) MessageType() Type  { return TypePlayerDisconnected }
func (PlayerReconnected) MessageType() Type   { return TypePlayerReconnected }
func (RoomClosed) MessageType() Type          { return TypeRoomClosed }
func (Error) MessageType() Type               { return TypeError }

func (RoomCreated) isServer()         {}
func (JoinedRoom) isServer()          {}
func (CountdownTimeUpdate) isServer() {}
func (RoomUpdate) isServer()          {}
func (TimeUpdate) isServer()          {}
func (TimeUp) isServer()              {}
func (AnswerResult) isServer()        {}
func (RoundStarted) isServer()        {}
func (RoundEnded) isServer()          {}
func (GameOver) isServer()            {}
func (PlayerDisconnected) isServer()  {}
func (PlayerReconnected) isServer()   {}
func (RoomClosed) isServer()          {}
func (Error) isServer()               {}
