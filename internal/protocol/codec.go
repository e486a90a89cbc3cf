package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownType = errors.New("unknown message type")

// frame is the envelope shared by both directions on the wire.
type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode marshals an outbound client frame.
func Encode(msg ClientMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// Decode parses one inbound frame into its tagged variant. Unknown tags
// return ErrUnknownType so the caller can log rather than silently drop.
func Decode(data []byte) (ServerEvent, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch f.Type {
	case MsgConnect:
		var ev Connected
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MsgPlayerList:
		var ev PlayerList
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MsgLobbyCreated:
		var ev LobbyCreated
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MsgLobbyJoined:
		var ev LobbyJoined
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MsgGameStarted:
		var ev GameStarted
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MsgNumberEliminated:
		var ev NumberEliminated
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MsgError:
		// error payload is a bare JSON string, not an object
		var msg string
		if len(f.Payload) > 0 {
			if err := json.Unmarshal(f.Payload, &msg); err != nil {
				return nil, fmt.Errorf("decode %s payload: %w", f.Type, err)
			}
		}
		return ErrorEvent{Message: msg}, nil
	case MsgYouWon:
		var ev YouWon
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MsgYouLost:
		var ev YouLost
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MsgPlayerEliminated:
		var ev PlayerEliminated
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MsgGameOver:
		var ev GameOver
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case MsgResetNumbers:
		return ResetNumbers{}, nil
	case MsgLobbyReset:
		var ev LobbyReset
		if err := unmarshalPayload(f, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
}

func unmarshalPayload(f frame, dst any) error {
	if len(f.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(f.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", f.Type, err)
	}
	return nil
}

// EncodeEvent marshals a server event back into its wire frame. Used by the
// loopback test server; the client itself only decodes.
func EncodeEvent(ev ServerEvent) ([]byte, error) {
	tag, err := tagOf(ev)
	if err != nil {
		return nil, err
	}

	var payload any
	switch e := ev.(type) {
	case ErrorEvent:
		payload = e.Message
	case ResetNumbers:
		payload = nil
	default:
		payload = ev
	}

	f := struct {
		Type    string `json:"type"`
		Payload any    `json:"payload,omitempty"`
	}{Type: tag, Payload: payload}
	return json.Marshal(f)
}

func tagOf(ev ServerEvent) (string, error) {
	switch ev.(type) {
	case Connected:
		return MsgConnect, nil
	case PlayerList:
		return MsgPlayerList, nil
	case LobbyCreated:
		return MsgLobbyCreated, nil
	case LobbyJoined:
		return MsgLobbyJoined, nil
	case GameStarted:
		return MsgGameStarted, nil
	case NumberEliminated:
		return MsgNumberEliminated, nil
	case ErrorEvent:
		return MsgError, nil
	case YouWon:
		return MsgYouWon, nil
	case YouLost:
		return MsgYouLost, nil
	case PlayerEliminated:
		return MsgPlayerEliminated, nil
	case GameOver:
		return MsgGameOver, nil
	case ResetNumbers:
		return MsgResetNumbers, nil
	case LobbyReset:
		return MsgLobbyReset, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownType, ev)
	}
}
