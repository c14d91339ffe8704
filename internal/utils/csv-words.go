package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/drawguess-server/internal"
)

// ReadCsvFile loads a word list of "word,count[,difficulty]" records.
func ReadCsvFile(filePath string) ([]internal.Word, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open word list %s: %w", filePath, err)
	}
	defer f.Close()

	return ReadCsv(f)
}

func ReadCsv(r io.Reader) ([]internal.Word, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	var words []internal.Word
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse word list: %w", err)
		}
		if len(record) < 2 {
			log.Debug().Strs("record", record).Msg("[ReadCsv] skipping invalid record")
			continue
		}

		text := strings.TrimSpace(record[0])
		count, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if text == "" || err != nil {
			log.Debug().Strs("record", record).Msg("[ReadCsv] skipping record with bad word or count")
			continue
		}

		word := internal.Word{
			Word:       text,
			Count:      count,
			Difficulty: DifficultyFor(text),
		}
		if len(record) > 2 {
			switch d := internal.WordDifficulty(strings.ToLower(strings.TrimSpace(record[2]))); d {
			case internal.DifficultyEasy, internal.DifficultyMedium, internal.DifficultyHard:
				word.Difficulty = d
			}
		}
		words = append(words, word)
	}

	return words, nil
}

// NewCSVWords builds a word source from a CSV word list.
func NewCSVWords(filePath string) (*StaticWords, error) {
	words, err := ReadCsvFile(filePath)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%s: %w", filePath, ErrNoWords)
	}
	return NewStaticWords(words, nil), nil
}
