// Package protocol defines the closed set of messages the relay speaks.
// Every frame is a JSON object tagged by a "type" field; inbound frames
// decode into exactly one variant below, outbound frames marshal from one.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"relay/internal/domain"
)

// Inbound message types.
const (
	TypeJoin      = "join"
	TypeLeave     = "leave"
	TypeMessage   = "message"
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeCandidate = "candidate"
)

var (
	// ErrMalformed covers frames that are not JSON objects or carry no type.
	ErrMalformed = errors.New("invalid message format")

	// ErrUnknownType marks a parseable frame with an unhandled discriminator.
	ErrUnknownType = errors.New("unknown message type")
)

var validate = validator.New()

// Inbound is the closed union of client-to-server messages.
type Inbound interface{ inbound() }

// Join requests membership in a room.
type Join struct {
	Room domain.RoomID `json:"room" validate:"required"`
}

// Leave requests departure from a room.
type Leave struct {
	Room domain.RoomID `json:"room"`
}

// Chat asks for a free-form payload to be broadcast to a room.
type Chat struct {
	Room    domain.RoomID   `json:"room"`
	Message json.RawMessage `json:"message"`
}

// Signal is one of offer/answer/candidate. Everything beyond the routing
// fields is kept raw and forwarded verbatim.
type Signal struct {
	Kind       string
	Room       domain.RoomID
	TargetPeer domain.PeerID
	Fields     map[string]json.RawMessage
}

func (Join) inbound()   {}
func (Leave) inbound()  {}
func (Chat) inbound()   {}
func (Signal) inbound() {}

// Decode parses a frame into its Inbound variant. It returns ErrMalformed
// for unparseable input or a missing type, and ErrUnknownType for a type
// the relay does not handle.
func Decode(data []byte) (Inbound, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if probe.Type == "" {
		return nil, ErrMalformed
	}

	switch probe.Type {
	case TypeJoin:
		var m Join
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return m, nil
	case TypeLeave:
		var m Leave
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return m, nil
	case TypeMessage:
		var m Chat
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return m, nil
	case TypeOffer, TypeAnswer, TypeCandidate:
		return decodeSignal(probe.Type, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, probe.Type)
	}
}

func decodeSignal(kind string, data []byte) (Signal, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Signal{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	sig := Signal{Kind: kind, Fields: fields}
	if raw, ok := fields["room"]; ok {
		var room string
		if err := json.Unmarshal(raw, &room); err != nil {
			return Signal{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		sig.Room = domain.RoomID(room)
	}
	if raw, ok := fields["targetPeer"]; ok {
		var target string
		if err := json.Unmarshal(raw, &target); err != nil {
			return Signal{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		sig.TargetPeer = domain.PeerID(target)
	}

	// Routing fields are consumed here; the rest travels untouched.
	delete(fields, "type")
	delete(fields, "room")
	delete(fields, "targetPeer")
	return sig, nil
}

// Validate checks the required-field constraints of a decoded message.
func Validate(m Inbound) error {
	switch m.(type) {
	case Join:
		return validate.Struct(m)
	default:
		return nil
	}
}
