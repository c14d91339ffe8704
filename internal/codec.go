package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownMessageType = errors.New("UNKNOWN_MESSAGE_TYPE: message type is not part of the protocol")
	ErrMalformedPayload   = errors.New("MALFORMED_PAYLOAD: message data does not match its type")
)

// Encode wraps msg in an envelope. A senderID of SystemSenderID is omitted
// from the wire.
func Encode(senderID int, msg Message) ([]byte, error) {
	data, err := msg.encodeData()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type(), err)
	}
	return json.Marshal(Envelope{SenderID: senderID, Type: msg.Type(), Data: data})
}

// Decode parses one wire frame into its envelope and typed message.
func Decode(raw []byte) (Envelope, Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	msg, err := Unpack(env)
	return env, msg, err
}

// Unpack decodes the data of an already parsed envelope.
func Unpack(env Envelope) (Message, error) {
	if sig, ok := NewSignal(env.Type); ok {
		return sig, nil
	}
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
	msg, err := decode(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, env.Type, err)
	}
	return msg, nil
}

var decoders = map[MessageType]func(data string) (Message, error){
	TypeDraw: func(data string) (Message, error) {
		var d DrawInstruction
		err := decodeJSON(data, &d)
		return Draw{Instruction: d}, err
	},
	TypeFill: func(data string) (Message, error) {
		var f FillInstruction
		err := decodeJSON(data, &f)
		return Fill{Instruction: f}, err
	},
	TypeClearCanvas: func(string) (Message, error) { return ClearCanvas{}, nil },

	TypeChat:        func(data string) (Message, error) { return Chat{Text: data}, nil },
	TypeGuessedChat: func(data string) (Message, error) { return GuessedChat{Text: data}, nil },
	TypeNotify:      func(data string) (Message, error) { return Notify{Text: data}, nil },
	TypeInfo:        func(data string) (Message, error) { return Info{Text: data}, nil },
	TypeAlert:       func(data string) (Message, error) { return Alert{Text: data}, nil },

	TypePlayerJoin: func(data string) (Message, error) {
		var p Player
		err := decodeJSON(data, &p)
		return PlayerJoin{Player: p}, err
	},
	TypePlayerLeave: func(data string) (Message, error) {
		id, err := decodeInt(data)
		return PlayerLeave{PlayerID: id}, err
	},
	TypePlayerDrawing: func(data string) (Message, error) {
		id, err := decodeInt(data)
		return PlayerDrawing{PlayerID: id}, err
	},
	TypePlayerGuessed: func(data string) (Message, error) {
		id, err := decodeInt(data)
		return PlayerGuessed{PlayerID: id}, err
	},

	TypeSetRounds: func(data string) (Message, error) {
		n, err := decodeInt(data)
		return SetRounds{Rounds: n}, err
	},
	TypeSetDrawTime: func(data string) (Message, error) {
		n, err := decodeInt(data)
		return SetDrawTime{Seconds: n}, err
	},

	TypeSetWordChoices: func(data string) (Message, error) {
		var choices []string
		err := decodeJSON(data, &choices)
		return SetWordChoices{Choices: choices}, err
	},
	TypeChooseWord: func(data string) (Message, error) { return ChooseWord{Word: data}, nil },
	TypeSetWord:    func(data string) (Message, error) { return SetWord{Word: data}, nil },
	TypeWordReveal: func(data string) (Message, error) { return WordReveal{Word: data}, nil },

	TypeSetGameState: func(data string) (Message, error) {
		var s GameState
		err := decodeJSON(data, &s)
		return SetGameState{State: s}, err
	},
	TypeSetSummary: func(data string) (Message, error) {
		var s Summary
		err := decodeJSON(data, &s)
		return SetSummary{Summary: s}, err
	},
	TypeCloseConnection: func(data string) (Message, error) {
		return CloseConnection{Reason: RevealReason(data)}, nil
	},
}

func decodeJSON(data string, v any) error {
	if data == "" {
		return errors.New("missing data")
	}
	return json.Unmarshal([]byte(data), v)
}

func decodeInt(data string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(data))
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func (Signal) encodeData() (string, error)      { return "", nil }
func (m Draw) encodeData() (string, error)      { return encodeJSON(m.Instruction) }
func (m Fill) encodeData() (string, error)      { return encodeJSON(m.Instruction) }
func (ClearCanvas) encodeData() (string, error) { return "", nil }

func (m Chat) encodeData() (string, error)        { return m.Text, nil }
func (m GuessedChat) encodeData() (string, error) { return m.Text, nil }
func (m Notify) encodeData() (string, error)      { return m.Text, nil }
func (m Info) encodeData() (string, error)        { return m.Text, nil }
func (m Alert) encodeData() (string, error)       { return m.Text, nil }

func (m PlayerJoin) encodeData() (string, error)    { return encodeJSON(m.Player) }
func (m PlayerLeave) encodeData() (string, error)   { return strconv.Itoa(m.PlayerID), nil }
func (m PlayerDrawing) encodeData() (string, error) { return strconv.Itoa(m.PlayerID), nil }
func (m PlayerGuessed) encodeData() (string, error) { return strconv.Itoa(m.PlayerID), nil }

func (m SetRounds) encodeData() (string, error)   { return strconv.Itoa(m.Rounds), nil }
func (m SetDrawTime) encodeData() (string, error) { return strconv.Itoa(m.Seconds), nil }

func (m SetWordChoices) encodeData() (string, error) { return encodeJSON(m.Choices) }
func (m ChooseWord) encodeData() (string, error)     { return m.Word, nil }
func (m SetWord) encodeData() (string, error)        { return m.Word, nil }
func (m WordReveal) encodeData() (string, error)     { return m.Word, nil }

func (m SetGameState) encodeData() (string, error)    { return encodeJSON(m.State) }
func (m SetSummary) encodeData() (string, error)      { return encodeJSON(m.Summary) }
func (m CloseConnection) encodeData() (string, error) { return string(m.Reason), nil }
