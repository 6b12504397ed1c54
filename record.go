package poster

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/k1LoW/errors"
)

// EventRecord is the immutable input of a poster render.
type EventRecord struct {
	Time            string `yaml:"time"`
	Date            string `yaml:"date"`
	Title           string `yaml:"title"` // multi-line; empty lines are dropped
	Venue           string `yaml:"venue"`
	Address         string `yaml:"address"`
	BackgroundQuery string `yaml:"keywords,omitempty"`
	Page            int    `yaml:"page,omitempty"`
}

// LoadEventRecord reads an event record from a YAML file.
func LoadEventRecord(path string) (_ EventRecord, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	var rec EventRecord
	b, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("failed to read event file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("failed to parse event file %s: %w", path, err)
	}
	return rec, nil
}

// Validate checks the fields a render cannot proceed without.
func (r EventRecord) Validate() error {
	if len(r.TitleLines()) == 0 {
		return fmt.Errorf("event title is required")
	}
	if r.Time == "" || r.Date == "" {
		return fmt.Errorf("event time and date are required")
	}
	if r.Page < 0 {
		return fmt.Errorf("invalid page: %d", r.Page)
	}
	return nil
}

// TitleLines returns the title split into upper-cased lines with empty
// lines dropped, the form the layout engine consumes.
func (r EventRecord) TitleLines() []string {
	var lines []string
	for _, line := range strings.Split(r.Title, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, strings.ToUpper(line))
	}
	return lines
}

// FirstTitleLine returns the first non-empty title line as entered, the
// seed for background query planning.
func (r EventRecord) FirstTitleLine() string {
	for _, line := range strings.Split(r.Title, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// TitleText returns the title as a single space-joined line, the form the
// webhook payload carries.
func (r EventRecord) TitleText() string {
	var lines []string
	for _, line := range strings.Split(r.Title, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}

// DatetimeText is the "<time> | <date>" row drawn below the panel's top
// edge.
func (r EventRecord) DatetimeText() string {
	return r.Time + " | " + r.Date
}

// page returns the search result page, defaulting to 1.
func (r EventRecord) page() int {
	if r.Page < 1 {
		return 1
	}
	return r.Page
}
