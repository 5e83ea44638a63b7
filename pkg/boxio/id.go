package boxio

import (
	"github.com/google/uuid"
)

// idSize is the size, in bytes, of a stream identifier on the wire.
const idSize = 16

// StreamID uniquely identifies a stream within the scope of one connection.
// It is opaque to the protocol: only equality matters, and its wire
// representation is exactly its 16 raw bytes (uuid.UUID already stores and
// encodes as 16 bytes, so no additional conversion is needed to treat it as
// a big-endian unsigned 128-bit integer).
type StreamID = uuid.UUID

// newStreamID generates a fresh, effectively-unique stream identifier using
// a random (version 4) UUID. Collisions across a single session are
// negligible under the birthday bound.
func newStreamID() (StreamID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return StreamID{}, err
	}
	return id, nil
}

// tag prepends id's 16 bytes to payload, returning a new buffer. payload may
// be empty.
func tag(id StreamID, payload []byte) []byte {
	body := make([]byte, idSize+len(payload))
	copy(body[:idSize], id[:])
	copy(body[idSize:], payload)
	return body
}

// untag splits a frame body into its stream identifier and application
// payload. It fails with errFormatInvalid if body is shorter than the
// 16-byte identifier.
func untag(body []byte) (StreamID, []byte, error) {
	if len(body) < idSize {
		return StreamID{}, nil, errFormatInvalid
	}
	var id StreamID
	copy(id[:], body[:idSize])
	return id, body[idSize:], nil
}
