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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	poster "github.com/hola-ivan/event-image-generator"
	"github.com/hola-ivan/event-image-generator/config"
	"github.com/spf13/cobra"
)

var (
	eventTime string
	eventDate string
	title     string
	venue     string
	address   string
	keywords  string
	variants  int
	outDir    string
	publish   bool
	watch     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [EVENT_FILE]",
	Short: "generate poster variants for an event",
	Long:  `generate poster variants for an event described in a YAML file or by flags.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger, err := newLogger()
		if err != nil {
			return err
		}
		cfg, err := config.Load(profile)
		if err != nil {
			return err
		}

		var eventFile string
		if len(args) == 1 {
			eventFile = args[0]
		}
		if watch && eventFile == "" {
			return fmt.Errorf("--watch requires an event file")
		}

		g, err := poster.New(ctx,
			poster.WithLogger(logger),
			poster.WithConfig(cfg),
		)
		if err != nil {
			return err
		}

		run := func() error {
			rec, err := buildRecord(eventFile)
			if err != nil {
				return err
			}
			results, err := g.RenderBatch(ctx, rec, variants)
			if err != nil {
				return err
			}
			for i, res := range results {
				name := fmt.Sprintf("event_%s_v%d_%s.png", sanitize(rec.Date), i+1, uuid.New().String()[:8])
				path := filepath.Join(outDir, name)
				if err := res.WriteFile(path); err != nil {
					return err
				}
				cmd.Println(path)
				for _, w := range res.Warnings {
					cmd.Printf("warning: %s\n", w)
				}
			}
			if len(results) < variants {
				cmd.Printf("generated %d of %d requested variants; try different keywords for more variety\n", len(results), variants)
			}
			if publish {
				publishResults(ctx, cmd, cfg, logger, results, rec)
			}
			return nil
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		if err := run(); err != nil {
			return err
		}
		if !watch {
			return nil
		}
		return watchAndRun(ctx, cmd, eventFile, run)
	},
}

// buildRecord loads the event file when given and lets flags override its
// fields.
func buildRecord(eventFile string) (poster.EventRecord, error) {
	var rec poster.EventRecord
	if eventFile != "" {
		var err error
		rec, err = poster.LoadEventRecord(eventFile)
		if err != nil {
			return rec, err
		}
	}
	if eventTime != "" {
		rec.Time = eventTime
	}
	if eventDate != "" {
		rec.Date = eventDate
	}
	if title != "" {
		rec.Title = strings.ReplaceAll(title, `\n`, "\n")
	}
	if venue != "" {
		rec.Venue = venue
	}
	if address != "" {
		rec.Address = address
	}
	if keywords != "" {
		rec.BackgroundQuery = keywords
	}
	return rec, rec.Validate()
}

func publishResults(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, results []*poster.RenderResult, rec poster.EventRecord) {
	if cfg.WebhookURL == "" {
		cmd.Println("warning: no webhook URL configured, skipping publish")
		return
	}
	p, err := poster.NewPublisher(cfg.WebhookURL, nil, logger)
	if err != nil {
		cmd.Printf("warning: %v\n", err)
		return
	}
	for i, res := range results {
		// publish failures are reported, never fatal
		if err := p.Publish(ctx, res, rec); err != nil {
			cmd.Printf("warning: variant %d not published: %v\n", i+1, err)
		}
	}
}

// watchAndRun re-renders whenever the event file changes.
func watchAndRun(ctx context.Context, cmd *cobra.Command, eventFile string, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(eventFile)); err != nil {
		return err
	}
	abs, err := filepath.Abs(eventFile)
	if err != nil {
		return err
	}
	cmd.Printf("watching %s\n", eventFile)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			p, err := filepath.Abs(event.Name)
			if err != nil || p != abs {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if err := run(); err != nil {
				cmd.Printf("warning: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.Printf("warning: watch error: %v\n", err)
		}
	}
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		default:
			return '-'
		}
	}, s)
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&eventTime, "time", "", "", "event time (e.g. 19:00)")
	generateCmd.Flags().StringVarP(&eventDate, "date", "", "", "event date (e.g. 24.10.2025)")
	generateCmd.Flags().StringVarP(&title, "title", "t", "", `event title; use \n for line breaks`)
	generateCmd.Flags().StringVarP(&venue, "venue", "", "", "venue name")
	generateCmd.Flags().StringVarP(&address, "address", "", "", "venue address")
	generateCmd.Flags().StringVarP(&keywords, "keywords", "k", "", "background image search keywords")
	generateCmd.Flags().IntVarP(&variants, "variants", "n", 5, "number of poster variants to generate")
	generateCmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	generateCmd.Flags().BoolVarP(&publish, "publish", "", false, "publish rendered posters to the configured webhook")
	generateCmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch the event file and re-render on change")
}
