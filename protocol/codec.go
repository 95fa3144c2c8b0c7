package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeError reports a frame that could not be decoded. Constraint names the
// violated rule; Cause holds the underlying JSON error when there is one.
type DecodeError struct {
	Constraint string
	Cause      error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("protocol: %s: %v", e.Constraint, e.Cause)
	}
	return fmt.Sprintf("protocol: %s", e.Constraint)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Encode serializes a message into a single JSON frame with the "type"
// discriminant as the first field. Encoding is deterministic and is the
// inverse of the matching decode function for every variant.
func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	tag, err := json.Marshal(m.MessageType())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	buf.Write(tag)

	// payload is an object; splice its fields after the discriminant.
	if len(payload) > 2 {
		buf.WriteByte(',')
		buf.Write(payload[1 : len(payload)-1])
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// envelope is the minimal probe used to extract the discriminant.
type envelope struct {
	Type *Type `json:"type"`
}

func probeType(data []byte) (Type, *DecodeError) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", &DecodeError{Constraint: "frame must be a JSON object", Cause: err}
	}
	if env.Type == nil || *env.Type == "" {
		return "", &DecodeError{Constraint: "discriminant field \"type\" is required"}
	}
	return *env.Type, nil
}

// DecodeServer decodes a server-to-client frame. Unknown extra fields are
// ignored; a missing or unknown discriminant or a structurally invalid
// payload yields a *DecodeError.
func DecodeServer(data []byte) (ServerMessage, error) {
	tag, derr := probeType(data)
	if derr != nil {
		return nil, derr
	}

	var (
		msg ServerMessage
		err error
	)
	switch tag {
	case TypeRoomCreated:
		msg, err = decodeAs[RoomCreated](data)
	case TypeJoinedRoom:
		msg, err = decodeAs[JoinedRoom](data)
	case TypeCountdownTimeUpdate:
		msg, err = decodeAs[CountdownTimeUpdate](data)
	case TypeRoomUpdate:
		var m RoomUpdate
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, &DecodeError{Constraint: "payload does not match variant room_update", Cause: err}
		}
		if !knownStateTags[m.State] {
			return nil, &DecodeError{Constraint: fmt.Sprintf("room_update.state %q is not a known room state", m.State)}
		}
		msg = m
	case TypeTimeUpdate:
		msg, err = decodeAs[TimeUpdate](data)
	case TypeTimeUp:
		msg, err = decodeAs[TimeUp](data)
	case TypeAnswerResult:
		msg, err = decodeAs[AnswerResult](data)
	case TypeRoundStarted:
		msg, err = decodeAs[RoundStarted](data)
	case TypeRoundEnded:
		msg, err = decodeAs[RoundEnded](data)
	case TypeGameOver:
		msg, err = decodeAs[GameOver](data)
	case TypePlayerDisconnected:
		msg, err = decodeAs[PlayerDisconnected](data)
	case TypePlayerReconnected:
		msg, err = decodeAs[PlayerReconnected](data)
	case TypeRoomClosed:
		msg, err = decodeAs[RoomClosed](data)
	case TypeError:
		msg, err = decodeAs[Error](data)
	default:
		return nil, &DecodeError{Constraint: fmt.Sprintf("unknown server message type %q", tag)}
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeClient decodes a client-to-server frame. It is the server-side
// counterpart of Encode and follows the same leniency rules as DecodeServer.
func DecodeClient(data []byte) (ClientMessage, error) {
	tag, derr := probeType(data)
	if derr != nil {
		return nil, derr
	}

	var (
		msg ClientMessage
		err error
	)
	switch tag {
	case TypeCreateRoom:
		msg, err = decodeAs[CreateRoom](data)
	case TypeJoinRoom:
		msg, err = decodeAs[JoinRoom](data)
	case TypeRejoinRoom:
		msg, err = decodeAs[RejoinRoom](data)
	case TypePlayerReady:
		msg, err = decodeAs[PlayerReady](data)
	case TypePlayerAnswer:
		msg, err = decodeAs[PlayerAnswer](data)
	case TypePlayerReconnect:
		msg, err = decodeAs[PlayerReconnect](data)
	default:
		return nil, &DecodeError{Constraint: fmt.Sprintf("unknown client message type %q", tag)}
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// decodeAs unmarshals data into the concrete variant M.
func decodeAs[M Message](data []byte) (M, error) {
	var m M
	if err := json.Unmarshal(data, &m); err != nil {
		return m, &DecodeError{
			Constraint: fmt.Sprintf("payload does not match variant %s", m.MessageType()),
			Cause:      err,
		}
	}
	return m, nil
}
