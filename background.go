package poster

import (
	"context"
	"log/slog"
)

// resolveBackground returns the background photo for the query and page, or
// nil to signal the white-canvas fallback. Search failures are recovered
// here: they are logged and downgraded to the fallback, never surfaced to
// the assembler.
func (g *Generator) resolveBackground(ctx context.Context, query string, page int) *Image {
	if query == "" {
		return nil
	}
	if g.searcher == nil {
		g.logger.Warn("no searcher configured, using background fallback")
		return nil
	}
	i, err := g.searcher.Search(ctx, query, page)
	if err != nil {
		g.logger.Warn("background fallback", slog.String("query", query), slog.Int("page", page), slog.String("error", err.Error()))
		return nil
	}
	if i == nil {
		g.logger.Info("background fallback", slog.String("query", query), slog.Int("page", page), slog.String("reason", "no results"))
		return nil
	}
	return i
}
