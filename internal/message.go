package internal

type MessageType string

const (
	// Canvas replication
	TypeDraw        MessageType = "draw"
	TypeFill        MessageType = "fill"
	TypeClearCanvas MessageType = "clearCanvas"

	// Chat
	TypeChat        MessageType = "chat"
	TypeGuessedChat MessageType = "guessedChat"
	TypeNotify      MessageType = "notify"
	TypeInfo        MessageType = "info"
	TypeAlert       MessageType = "alert"

	// Lifecycle
	TypePlayerJoin    MessageType = "playerJoin"
	TypePlayerLeave   MessageType = "playerLeave"
	TypePlayerDrawing MessageType = "playerDrawing"
	TypePlayerGuessed MessageType = "playerGuessed"

	// Lobby
	TypeSetRounds   MessageType = "setRounds"
	TypeSetDrawTime MessageType = "setDrawTime"
	TypeStartGame   MessageType = "startGame"
	TypeLobbyWait   MessageType = "lobbyWait"
	TypeLobbyPlay   MessageType = "lobbyPlay"
	TypeLobbyReveal MessageType = "lobbyReveal"
	TypeQuitGame    MessageType = "quitGame"

	// Round flow
	TypeRoundWait       MessageType = "roundWait"
	TypeRoundChooseWord MessageType = "roundChooseWord"
	TypeRoundOngoing    MessageType = "roundOngoing"
	TypeRoundTurnReveal MessageType = "roundTurnReveal"
	TypeRoundReveal     MessageType = "roundReveal"
	TypeStartNextTurn   MessageType = "startNextTurn"
	TypeStartNextRound  MessageType = "startNextRound"
	TypeGetWordChoices  MessageType = "getWordChoices"
	TypeSetWordChoices  MessageType = "setWordChoices"
	TypeChooseWord      MessageType = "chooseWord"
	TypeSetWord         MessageType = "setWord"
	TypeWordReveal      MessageType = "wordReveal"

	// State sync
	TypeGetGameState MessageType = "getGameState"
	TypeSetGameState MessageType = "setGameState"
	TypeGetSummary   MessageType = "getSummary"
	TypeSetSummary   MessageType = "setSummary"

	// Termination
	TypeCloseConnection MessageType = "closeConnection"
)

// Envelope is the wire shape of every message. Data carries the payload
// encoded per message type; structured payloads are JSON inside the string.
type Envelope struct {
	SenderID int         `json:"senderId,omitempty"`
	Type     MessageType `json:"type"`
	Data     string      `json:"data,omitempty"`
}

// Message is a decoded protocol message. The set of implementations is
// closed: every case lives in this file.
type Message interface {
	Type() MessageType
	encodeData() (string, error)
}

// CanvasOp is a message that can be recorded in the drawing ledger.
type CanvasOp interface {
	Message
	canvasOp()
}

// Signal is a message whose type is its whole content.
type Signal struct {
	Kind MessageType
}

type Draw struct{ Instruction DrawInstruction }
type Fill struct{ Instruction FillInstruction }
type ClearCanvas struct{}

type Chat struct{ Text string }
type GuessedChat struct{ Text string }
type Notify struct{ Text string }
type Info struct{ Text string }
type Alert struct{ Text string }

type PlayerJoin struct{ Player Player }
type PlayerLeave struct{ PlayerID int }
type PlayerDrawing struct{ PlayerID int }
type PlayerGuessed struct{ PlayerID int }

type SetRounds struct{ Rounds int }
type SetDrawTime struct{ Seconds int }

type SetWordChoices struct{ Choices []string }
type ChooseWord struct{ Word string }
type SetWord struct{ Word string }
type WordReveal struct{ Word string }

type SetGameState struct{ State GameState }
type SetSummary struct{ Summary Summary }

type CloseConnection struct{ Reason RevealReason }

func (m Signal) Type() MessageType        { return m.Kind }
func (Draw) Type() MessageType            { return TypeDraw }
func (Fill) Type() MessageType            { return TypeFill }
func (ClearCanvas) Type() MessageType     { return TypeClearCanvas }
func (Chat) Type() MessageType            { return TypeChat }
func (GuessedChat) Type() MessageType     { return TypeGuessedChat }
func (Notify) Type() MessageType          { return TypeNotify }
func (Info) Type() MessageType            { return TypeInfo }
func (Alert) Type() MessageType           { return TypeAlert }
func (PlayerJoin) Type() MessageType      { return TypePlayerJoin }
func (PlayerLeave) Type() MessageType     { return TypePlayerLeave }
func (PlayerDrawing) Type() MessageType   { return TypePlayerDrawing }
func (PlayerGuessed) Type() MessageType   { return TypePlayerGuessed }
func (SetRounds) Type() MessageType       { return TypeSetRounds }
func (SetDrawTime) Type() MessageType     { return TypeSetDrawTime }
func (SetWordChoices) Type() MessageType  { return TypeSetWordChoices }
func (ChooseWord) Type() MessageType      { return TypeChooseWord }
func (SetWord) Type() MessageType         { return TypeSetWord }
func (WordReveal) Type() MessageType      { return TypeWordReveal }
func (SetGameState) Type() MessageType    { return TypeSetGameState }
func (SetSummary) Type() MessageType      { return TypeSetSummary }
func (CloseConnection) Type() MessageType { return TypeCloseConnection }

func (Draw) canvasOp()        {}
func (Fill) canvasOp()        {}
func (ClearCanvas) canvasOp() {}

// signalTypes lists every message type that carries no payload.
var signalTypes = map[MessageType]bool{
	TypeStartGame:       true,
	TypeLobbyWait:       true,
	TypeLobbyPlay:       true,
	TypeLobbyReveal:     true,
	TypeQuitGame:        true,
	TypeRoundWait:       true,
	TypeRoundChooseWord: true,
	TypeRoundOngoing:    true,
	TypeRoundTurnReveal: true,
	TypeRoundReveal:     true,
	TypeStartNextTurn:   true,
	TypeStartNextRound:  true,
	TypeGetWordChoices:  true,
	TypeGetGameState:    true,
	TypeGetSummary:      true,
}

// NewSignal returns the payload-less message of the given type.
func NewSignal(t MessageType) (Signal, bool) {
	return Signal{Kind: t}, signalTypes[t]
}

// ChatFor builds the chat-family message matching the chat type.
func ChatFor(kind ChatMessageType, text string) Message {
	switch kind {
	case ChatGuessed:
		return GuessedChat{Text: text}
	case ChatNotify:
		return Notify{Text: text}
	case ChatInfo:
		return Info{Text: text}
	case ChatAlert:
		return Alert{Text: text}
	default:
		return Chat{Text: text}
	}
}
