package importer

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Entry is one path read from another tool's database.
type Entry struct {
	Path      string
	Count     int64
	Timestamp int64
}

// ParseFasd reads fasd's "path|score|timestamp" lines. Scores are rounded
// to a count of at least 1 and must not be negative.
func ParseFasd(r io.Reader) ([]Entry, error) {
	return parseLines(r, func(line string) (Entry, error) {
		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			return Entry{}, fmt.Errorf("invalid entry: %s", line)
		}

		count, err := parseScore(parts[1])
		if err != nil {
			return Entry{}, err
		}

		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("invalid timestamp: %w", err)
		}

		return Entry{Path: parts[0], Count: count, Timestamp: ts}, nil
	})
}

// ParseScorePath reads "score path" lines as written by autojump and printed
// by zoxide. Neither records note times, so every entry is stamped with now.
func ParseScorePath(r io.Reader, now int64) ([]Entry, error) {
	return parseLines(r, func(line string) (Entry, error) {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return Entry{}, fmt.Errorf("invalid entry: %s", line)
		}

		count, err := parseScore(fields[0])
		if err != nil {
			return Entry{}, err
		}

		return Entry{Path: fields[1], Count: count, Timestamp: now}, nil
	})
}

func parseScore(s string) (int64, error) {
	score, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid score: %w", err)
	}
	if score < 0 || math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("score cannot be negative or non-finite: %s", s)
	}
	return max(1, int64(math.Round(score))), nil
}

// parseLines applies parse to every non-blank line. The first bad line
// fails the whole input.
func parseLines(r io.Reader, parse func(string) (Entry, error)) ([]Entry, error) {
	entries := []Entry{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, nil
}
