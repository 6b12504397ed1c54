/*
Copyright © 2025 hola-ivan

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/hola-ivan/event-image-generator/config"
	"github.com/hola-ivan/event-image-generator/logger/dot"
	"github.com/hola-ivan/event-image-generator/version"
	"github.com/k1LoW/errors"
	"github.com/k1LoW/tail"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
)

var profile string

// tb keeps the most recent structured log lines for the error dump.
var tb = tail.New(100)

var rootCmd = &cobra.Command{
	Use:          "eventimg",
	Short:        "eventimg renders promotional event posters",
	Long:         `eventimg renders 1080x1080 promotional posters from an event record, with searched photo backgrounds and a fixed branded footer.`,
	SilenceUsage: true,
	Version:      fmt.Sprintf("%s (rev:%s)", version.Version, version.Revision),
}

type errorData struct {
	LatestLogs  []any     `json:"latest_logs"`
	StackTraces any       `json:"stack_traces"`
	CreatedAt   time.Time `json:"created_at"`
	Version     string    `json:"version"`
	Revision    string    `json:"revision"`
}

// https://api.pexels.com/v1/search?query=xxxxxx
var searchAPIURLRe = regexp.MustCompile(`(https://api\.pexels\.com/v1/search)([^"]*)`)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Write stack trace log to state directory
		var latestLogs []any
		for _, line := range tb.Lines() {
			// strip query parameters from search API URLs
			line = searchAPIURLRe.ReplaceAllString(line, "${1}?**********")
			var m map[string]any
			if err := json.Unmarshal([]byte(line), &m); err != nil {
				latestLogs = append(latestLogs, line)
			} else {
				latestLogs = append(latestLogs, m)
			}
		}
		d := &errorData{
			LatestLogs:  latestLogs,
			StackTraces: errors.StackTraces(err),
			CreatedAt:   time.Now(),
			Version:     version.Version,
			Revision:    version.Revision,
		}
		b, err := json.Marshal(d)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		} else {
			if err := os.MkdirAll(config.StateHomePath(), 0o700); err == nil {
				dumpPath := filepath.Join(config.StateHomePath(), "error.json")
				if err := os.WriteFile(dumpPath, b, 0o600); err != nil {
					_, _ = fmt.Fprintf(os.Stderr, "failed to write error.json to %s: %v\n", dumpPath, err)
				}
			}
		}
		os.Exit(1)
	}
}

// newLogger fans log records out to the console dot handler and to the tail
// buffer feeding the error dump.
func newLogger() (*slog.Logger, error) {
	dotHandler, err := dot.New(slog.NewTextHandler(os.Stdout, nil))
	if err != nil {
		return nil, err
	}
	return slog.New(slogmulti.Fanout(
		slog.NewJSONHandler(tb, &slog.HandlerOptions{Level: slog.LevelDebug}),
		dotHandler,
	)), nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "", "", "profile name")
}
