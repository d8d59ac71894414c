package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/namefreezers/city-weather-charts/internal/weather/types"
)

// Prompts and hints shown by the two interactive programs.
const (
	CurrentPrompt = "Please enter city and optional country code (separated by comma), " +
		"e.g., (London,GB) or (Abuja).\n" +
		"Separate different city/country pairs by semicolon ';', " +
		"e.g., (London,GB;Abuja): "
	CurrentEmptyHint = "Enter a valid city and/or country"

	ForecastPrompt = "Please enter city and optional country code (separated by comma), " +
		"e.g., (London,GB) or (Abuja).\nSeparate different city/country " +
		"pairs by semicolon ';', e.g., (London,GB;Abuja).\nEnter 'quit' " +
		"when you want to exit. "
	ForecastEmptyHint = "Please enter a valid city and/or country code."
)

// ErrQuit is returned by Session.Next when the user types "quit".
var ErrQuit = errors.New("quit")

// ParseLocation turns "london , gb" into {City: "London", CountryCode: "GB"}.
// Parts beyond the second are ignored.
func ParseLocation(entry string) types.Location {
	title := cases.Title(language.Und)

	parts := strings.Split(entry, ",")
	for i, p := range parts {
		parts[i] = title.String(strings.TrimSpace(p))
	}

	loc := types.Location{City: parts[0]}
	if len(parts) > 1 && parts[1] != "" {
		loc.CountryCode = strings.ToUpper(parts[1])
	}
	return loc
}

// ParseLocations splits a prompt line on ';' and parses every non-empty entry.
func ParseLocations(line string) []types.Location {
	var locs []types.Location
	for _, entry := range strings.Split(line, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		loc := ParseLocation(entry)
		if loc.City == "" {
			continue
		}
		locs = append(locs, loc)
	}
	return locs
}

// Session reads batches of locations from an interactive input.
type Session struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string
	hint   string

	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

func NewSession(in io.Reader, out io.Writer, prompt, emptyHint string) *Session {
	return &Session{
		in:     bufio.NewReader(in),
		out:    out,
		prompt: prompt,
		hint:   emptyHint,
		lines:  make(chan lineResult, 1),
	}
}

// readLines feeds s.lines until the input fails or ends. Lines have no length limit.
// A read blocked on a terminal cannot be interrupted, so the goroutine outlives a
// cancelled Next and is left to exit with the process.
func (s *Session) readLines() {
	defer close(s.lines)
	for {
		line, err := s.in.ReadString('\n')
		if line != "" {
			s.lines <- lineResult{text: line}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				err = fmt.Errorf("read input: %w", err)
			}
			s.lines <- lineResult{err: err}
			return
		}
	}
}

// Next prompts until the user enters at least one location.
// It returns ErrQuit on "quit", io.EOF when the input is exhausted and
// ctx.Err() when ctx ends while waiting for input.
func (s *Session) Next(ctx context.Context) ([]types.Location, error) {
	s.once.Do(func() { go s.readLines() })

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprint(s.out, s.prompt)

		var res lineResult
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r, ok := <-s.lines:
			if !ok {
				return nil, io.EOF
			}
			res = r
		}
		if res.err != nil {
			return nil, res.err
		}

		line := strings.TrimSpace(res.text)
		if strings.EqualFold(line, "quit") {
			return nil, ErrQuit
		}

		locs := ParseLocations(line)
		if len(locs) == 0 {
			fmt.Fprintln(s.out, s.hint)
			continue
		}
		return locs, nil
	}
}
