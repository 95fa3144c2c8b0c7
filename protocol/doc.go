// Package protocol defines the wire protocol between the quiz client and the
// game server.
//
// The protocol package implements:
//   - The closed catalog of client-to-server and server-to-client messages
//   - JSON encoding with a "type" discriminant field on every frame
//   - Lenient decoding that ignores unknown fields and field order
//   - Structured decode errors naming the violated constraint
//
// Wire Format:
//
// Every frame is a single UTF-8 JSON object. The "type" field selects the
// message variant; all remaining fields belong to that variant. Unknown extra
// fields are ignored on decode. A frame with a missing or unknown "type", or
// a payload that does not match the variant's structure, yields a
// *DecodeError.
//
// Example frames:
//
//	{"type":"create_room","roomName":"Trivia Night","categoryId":"science","gameType":"classic"}
//	{"type":"room_update","state":"WAITING","players":[{"id":"p1","name":"Ada","score":0}]}
//
// Round-Trip Law:
//
// For every message m in either catalog, decoding the encoding of m yields a
// value equal to m. Encoding is deterministic: the discriminant is always the
// first field, followed by the variant payload in struct order.
//
// Usage:
//
//	data, err := protocol.Encode(protocol.JoinRoom{RoomID: "r1"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	msg, err := protocol.DecodeServer(frame)
//	if err != nil {
//		// malformed frame; the connection stays open
//	}
package protocol
