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
	"net/http"
	"time"

	"github.com/fatih/color"
	poster "github.com/hola-ivan/event-image-generator"
	"github.com/hola-ivan/event-image-generator/config"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "check the configuration and assets needed to render posters",
	Long:  `check the configuration and assets needed to render posters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		yellow := color.New(color.FgYellow)

		allOK := true

		cfg, err := config.Load(profile)
		if err != nil {
			return err
		}

		// 1. Check search API key
		cmd.Print("Checking search API key ... ")
		if cfg.APIKey == "" {
			yellow.Fprintln(cmd.OutOrStdout(), "MISSING")
			cmd.Println("   Set PEXELS_API_KEY or apiKey in the config file.")
			cmd.Println("   Posters will fall back to a plain white background.")
		} else {
			green.Fprintln(cmd.OutOrStdout(), "OK")

			// 2. Check the search endpoint answers with the key
			cmd.Print("Checking search endpoint ... ")
			if err := checkEndpoint(ctx, cfg.APIKey, cfg.SearchEndpoint); err != nil {
				yellow.Fprintln(cmd.OutOrStdout(), "UNREACHABLE")
				cmd.Printf("   %v\n", err)
			} else {
				green.Fprintln(cmd.OutOrStdout(), "OK")
			}
		}

		// 3. Check fonts (fatal to rendering when missing)
		logger, err := newLogger()
		if err != nil {
			return err
		}
		cmd.Print("Checking fonts ... ")
		g, err := poster.New(ctx,
			poster.WithLogger(logger),
			poster.WithConfig(cfg),
		)
		if err != nil {
			red.Fprintln(cmd.OutOrStdout(), "FAILED")
			cmd.Printf("   %v\n", err)
			allOK = false
		} else {
			green.Fprintln(cmd.OutOrStdout(), "OK")
		}

		// 4. Check logo (recoverable: footer is skipped without it)
		if g != nil {
			cmd.Print("Checking logo ... ")
			if err := g.CheckLogo(ctx); err != nil {
				yellow.Fprintln(cmd.OutOrStdout(), "MISSING")
				cmd.Printf("   %v\n", err)
				cmd.Println("   Posters will be generated without the footer.")
			} else {
				green.Fprintln(cmd.OutOrStdout(), "OK")
			}
		}

		if !allOK {
			cmd.Println()
			cmd.Println("Fix the failures above and run `eventimg doctor` again.")
			return nil
		}
		cmd.Println()
		cmd.Println("All checks passed.")
		return nil
	},
}

// checkEndpoint fires one tiny authenticated search to verify the endpoint
// answers. A 4xx other than auth failures still counts as reachable.
func checkEndpoint(ctx context.Context, apiKey, endpoint string) error {
	if endpoint == "" {
		endpoint = "https://api.pexels.com/v1/search"
	}
	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?query=test&per_page=1", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", apiKey)
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return fmt.Errorf("the API rejected the key (status code %d)", res.StatusCode)
	case res.StatusCode >= 500:
		return fmt.Errorf("status code %d", res.StatusCode)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
