// Package textfile reads an itinerary that is already written down: one
// "Day N" marker or "HH:MM - activity" entry per line.
package textfile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/theakshaypant/dayplan/internal/core"
	appLog "github.com/theakshaypant/dayplan/internal/log"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

type Source struct {
	id    string
	name  string
	path  string
	stdin io.Reader
}

func New(id, path string) *Source {
	return &Source{
		id:    id,
		name:  "Itinerary file",
		path:  path,
		stdin: os.Stdin,
	}
}

func (s *Source) ID() string   { return s.id }
func (s *Source) Name() string { return s.name }

// FetchItinerary returns the lines of the file as they are. The request is
// ignored; the file decides which days exist.
func (s *Source) FetchItinerary(ctx context.Context, _ core.ItineraryRequest) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.path == Stdin {
		return readLines(s.stdin, "stdin")
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open itinerary: %w", core.ErrNetwork, err)
	}
	defer f.Close()

	return readLines(f, s.path)
}

func readLines(r io.Reader, name string) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrNetwork, name, err)
	}
	appLog.Debug("textfile: read itinerary", "source", name, "lines", len(lines))
	return lines, nil
}
