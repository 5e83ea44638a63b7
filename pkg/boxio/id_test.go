package boxio

import (
	"bytes"
	"testing"
)

// TestTagUntagRoundTrip verifies invariant 2 (ID preservation): the first
// 16 bytes of a tagged frame body equal the stream identifier, and the
// remainder equals the original payload.
func TestTagUntagRoundTrip(t *testing.T) {
	id, err := newStreamID()
	if err != nil {
		t.Fatalf("newStreamID failed: %v", err)
	}

	payload := []byte{0x01, 0x02, 0x03}
	body := tag(id, payload)

	if len(body) != idSize+len(payload) {
		t.Fatalf("tagged body has length %d, expected %d", len(body), idSize+len(payload))
	}
	if !bytes.Equal(body[:idSize], id[:]) {
		t.Fatalf("tagged body id bytes do not match stream identifier")
	}
	if !bytes.Equal(body[idSize:], payload) {
		t.Fatalf("tagged body payload does not match original payload")
	}

	recoveredID, recoveredPayload, err := untag(body)
	if err != nil {
		t.Fatalf("untag failed: %v", err)
	}
	if recoveredID != id {
		t.Fatalf("untag returned id %s, expected %s", recoveredID, id)
	}
	if !bytes.Equal(recoveredPayload, payload) {
		t.Fatalf("untag returned payload %v, expected %v", recoveredPayload, payload)
	}
}

// TestTagEmptyPayload verifies that a zero-length payload round-trips; the
// wire format places no lower bound on payload size.
func TestTagEmptyPayload(t *testing.T) {
	id, err := newStreamID()
	if err != nil {
		t.Fatalf("newStreamID failed: %v", err)
	}

	body := tag(id, nil)
	if len(body) != idSize {
		t.Fatalf("tagged empty-payload body has length %d, expected %d", len(body), idSize)
	}

	recoveredID, recoveredPayload, err := untag(body)
	if err != nil {
		t.Fatalf("untag failed: %v", err)
	}
	if recoveredID != id {
		t.Fatalf("untag returned id %s, expected %s", recoveredID, id)
	}
	if len(recoveredPayload) != 0 {
		t.Fatalf("untag returned non-empty payload %v", recoveredPayload)
	}
}

// TestUntagFormatInvalid verifies that bodies shorter than the 16-byte
// identifier are rejected with errFormatInvalid, per invariant 7.
func TestUntagFormatInvalid(t *testing.T) {
	short := make([]byte, idSize-1)
	if _, _, err := untag(short); err != errFormatInvalid {
		t.Fatalf("untag of short body returned %v, expected errFormatInvalid", err)
	}
}

// TestNewStreamIDUnique spot-checks that consecutively generated stream
// identifiers are distinct.
func TestNewStreamIDUnique(t *testing.T) {
	a, err := newStreamID()
	if err != nil {
		t.Fatalf("newStreamID failed: %v", err)
	}
	b, err := newStreamID()
	if err != nil {
		t.Fatalf("newStreamID failed: %v", err)
	}
	if a == b {
		t.Fatalf("two consecutive stream identifiers were equal: %s", a)
	}
}
