package utils

import (
	"errors"
	"math/rand/v2"
	"strings"
)

const (
	RoomCodeLength = 6
	// No 0/O or 1/I/L so codes survive being read aloud.
	roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	maxCodeAttempts  = 100
)

var (
	ErrRoomCodesExhausted = errors.New("ROOM_CODES_EXHAUSTED: could not find a free room code")
	ErrInvalidRoomCode    = errors.New("INVALID_ROOM_CODE: room code is malformed")
)

// RoomCodes allocates short human-friendly room ids.
type RoomCodes struct{}

// Allocate returns a code for which taken reports false.
func (RoomCodes) Allocate(taken func(string) bool) (string, error) {
	for range maxCodeAttempts {
		code := GenerateRoomCode()
		if !taken(code) {
			return code, nil
		}
	}
	return "", ErrRoomCodesExhausted
}

func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))]
	}
	return string(code)
}

// NormalizeRoomCode upper-cases and trims a code taken from a URL.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func ValidateRoomCode(code string) error {
	if len(code) != RoomCodeLength {
		return ErrInvalidRoomCode
	}
	for _, ch := range code {
		if !strings.ContainsRune(roomCodeAlphabet, ch) {
			return ErrInvalidRoomCode
		}
	}
	return nil
}
