package operator

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// ErrInvalidCommand is returned when a payload cannot be decoded.
var ErrInvalidCommand = errors.New("invalid command")

// Command asks the operator to run the handler mapped to Code with Value.
type Command struct {
	CommandID string `json:"command_id"`
	Code      uint32 `json:"code"`
	Value     byte   `json:"value"`
	Source    string `json:"-"`
}

// Reply reports the result of a Command. Mapped is false when no handler was
// registered for the code; Result is then false as well.
type Reply struct {
	CommandID string `json:"command_id"`
	Code      uint32 `json:"code"`
	Value     byte   `json:"value"`
	Mapped    bool   `json:"mapped"`
	Result    bool   `json:"result"`
	Outcome   string `json:"outcome"`
}

type wireCommand struct {
	CommandID string  `json:"command_id"`
	Code      *uint32 `json:"code"`
	Value     *uint32 `json:"value"`
}

// DecodeCommand accepts a JSON object {"command_id","code","value"}, the
// same object encoded as a CBOR map, or a raw two byte frame [code, value].
// The only two byte payload not read as a frame is "{}". A missing command
// ID is generated.
func DecodeCommand(payload []byte) (Command, error) {
	cmd, _, err := DecodeCommandFormat(payload)
	return cmd, err
}

// DecodeCommandFormat is DecodeCommand that also reports the detected
// encoding so the reply can be sent back in kind.
func DecodeCommandFormat(payload []byte) (Command, Format, error) {
	if len(payload) == 2 && !(payload[0] == '{' && json.Valid(payload)) {
		return Command{CommandID: uuid.NewString(), Code: uint32(payload[0]), Value: payload[1]}, FormatFrame, nil
	}
	var w wireCommand
	format := FormatJSON
	if isCBORMap(payload) {
		format = FormatCBOR
		if err := cbor.Unmarshal(payload, &w); err != nil {
			return Command{}, format, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
	} else if err := json.Unmarshal(payload, &w); err != nil {
		return Command{}, format, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	cmd, err := w.command()
	return cmd, format, err
}

func (w wireCommand) command() (Command, error) {
	if w.Code == nil {
		return Command{}, fmt.Errorf("%w: missing code", ErrInvalidCommand)
	}
	if *w.Code > 0xFF {
		return Command{}, fmt.Errorf("%w: code %d out of range", ErrInvalidCommand, *w.Code)
	}
	cmd := Command{CommandID: w.CommandID, Code: *w.Code}
	if w.Value != nil {
		if *w.Value > 0xFF {
			return Command{}, fmt.Errorf("%w: value %d out of range", ErrInvalidCommand, *w.Value)
		}
		cmd.Value = byte(*w.Value)
	}
	if cmd.CommandID == "" {
		cmd.CommandID = uuid.NewString()
	}
	return cmd, nil
}

// EncodeCommand renders cmd as JSON.
func EncodeCommand(cmd Command) ([]byte, error) {
	return json.Marshal(cmd)
}

// EncodeCommandAs renders cmd in format f. A frame carries no command ID.
func EncodeCommandAs(cmd Command, f Format) ([]byte, error) {
	switch f {
	case FormatCBOR:
		return cborEncMode.Marshal(cmd)
	case FormatFrame:
		if cmd.Code > 0xFF {
			return nil, fmt.Errorf("%w: code %d out of range", ErrInvalidCommand, cmd.Code)
		}
		return []byte{byte(cmd.Code), cmd.Value}, nil
	default:
		return json.Marshal(cmd)
	}
}

// EncodeReply renders r as JSON.
func EncodeReply(r Reply) ([]byte, error) {
	return json.Marshal(r)
}

// EncodeReplyAs renders r as CBOR for CBOR commands and as JSON otherwise.
func EncodeReplyAs(r Reply, f Format) ([]byte, error) {
	if f == FormatCBOR {
		return cborEncMode.Marshal(r)
	}
	return json.Marshal(r)
}

// DecodeReply parses a JSON or CBOR reply.
func DecodeReply(payload []byte) (Reply, error) {
	var r Reply
	var err error
	if isCBORMap(payload) {
		err = cbor.Unmarshal(payload, &r)
	} else {
		err = json.Unmarshal(payload, &r)
	}
	if err != nil {
		return Reply{}, fmt.Errorf("decode reply: %w", err)
	}
	return r, nil
}
