package internal

import "time"

const (
	DefaultRounds     = 3
	DefaultDrawTime   = 60
	MinRounds         = 2
	MaxRounds         = 10
	MinDrawTime       = 30
	MaxDrawTime       = 180
	MinPlayersToStart = 2
	MaxPlayersPerRoom = 8
	MaxPlayerNameLen  = 20
	MaxChatLength     = 200
	MaxChatHistory    = 200

	// SystemSenderID marks messages that originate from the room itself.
	SystemSenderID = 0

	ChooseWordDuration = 15 * time.Second
	RevealDuration     = 5 * time.Second
)

type LobbyState string

const (
	LobbyUnset  LobbyState = "unset"
	LobbyWait   LobbyState = "wait"
	LobbyPlay   LobbyState = "play"
	LobbyReveal LobbyState = "reveal"
)

type RoundState string

const (
	RoundUnset      RoundState = "unset"
	RoundWait       RoundState = "wait"
	RoundChooseWord RoundState = "chooseWord"
	RoundOngoing    RoundState = "ongoing"
	RoundTurnReveal RoundState = "turnReveal"
	RoundReveal     RoundState = "reveal"
)

// InTurn reports whether a drawer is assigned in this state.
func (s RoundState) InTurn() bool {
	return s == RoundChooseWord || s == RoundOngoing || s == RoundTurnReveal
}

type RevealReason string

const (
	ReasonTimeOut          RevealReason = "timeOut"
	ReasonAllGuessed       RevealReason = "allGuessed"
	ReasonDrawerLeave      RevealReason = "drawerLeave"
	ReasonHostLeave        RevealReason = "hostLeave"
	ReasonNotEnoughPlayers RevealReason = "notEnoughPlayers"
	ReasonConnectionError  RevealReason = "connectionError"
	ReasonUnexpectedError  RevealReason = "unexpectedError"
)

var reasonMessages = map[RevealReason]string{
	ReasonHostLeave:        "Host left!",
	ReasonTimeOut:          "Time is up!",
	ReasonAllGuessed:       "Everyone guessed the word!",
	ReasonDrawerLeave:      "Drawer left!",
	ReasonNotEnoughPlayers: "Not enough players!",
	ReasonConnectionError:  "Connection error occured!",
	ReasonUnexpectedError:  "Unexpected error occured!",
}

// Message returns the text shown to players for the reason.
func (r RevealReason) Message() string {
	return reasonMessages[r]
}

func (r RevealReason) Valid() bool {
	_, ok := reasonMessages[r]
	return ok
}

type WordDifficulty string

const (
	DifficultyEasy   WordDifficulty = "easy"
	DifficultyMedium WordDifficulty = "medium"
	DifficultyHard   WordDifficulty = "hard"
)

type Word struct {
	Word       string         `json:"word"`
	Count      int            `json:"count"`
	Difficulty WordDifficulty `json:"difficulty"`
}

type ChatMessageType string

const (
	ChatPlain   ChatMessageType = "chat"
	ChatGuessed ChatMessageType = "guessedChat"
	ChatNotify  ChatMessageType = "notify"
	ChatInfo    ChatMessageType = "info"
	ChatAlert   ChatMessageType = "alert"
)

type ChatMessage struct {
	SenderID   int             `json:"senderId,omitempty"`
	SenderName string          `json:"senderName,omitempty"`
	Content    string          `json:"content"`
	Type       ChatMessageType `json:"type"`
}

// GameState is the per-viewer snapshot sent as setGameState.
type GameState struct {
	Word         string        `json:"word"`
	LobbyID      string        `json:"lobbyId"`
	Rounds       int           `json:"rounds"`
	DrawTime     int           `json:"drawTime"`
	LobbyState   LobbyState    `json:"lobbyState"`
	RoundState   RoundState    `json:"roundState"`
	Players      []Player      `json:"players"`
	CurrentRound int           `json:"currentRound"`
	TimeLeft     int           `json:"timeLeft"`
	ChatMessages []ChatMessage `json:"chatMessages"`
}

type PlayerScore struct {
	Name       string `json:"name"`
	IsYou      bool   `json:"isYou"`
	TurnScore  int    `json:"turnScore"`
	RoundScore int    `json:"roundScore"`
	GameScore  int    `json:"gameScore"`
}

type Summary struct {
	Word   string        `json:"word"`
	Reason RevealReason  `json:"reason"`
	Scores []PlayerScore `json:"scores"`
}

type CreateRoomResponse struct {
	RoomID string `json:"roomId"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Rooms    int               `json:"rooms"`
	Database map[string]string `json:"database,omitempty"`
}

// Response is the envelope for JSON endpoints that report their own timing.
type Response struct {
	StatusCode    int   `json:"statusCode"`
	RespStartTime int64 `json:"respStartTime"`
	RespEndTime   int64 `json:"respEndTime"`
	NetRespTime   int64 `json:"netRespTime"`
	Data          any   `json:"data"`
}
