package poster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/hola-ivan/event-image-generator/config"
	"github.com/k1LoW/errors"
	"golang.org/x/sync/errgroup"
)

// maxCandidatePages is how many result pages of a keyword query a batch
// walks while hunting for visually distinct backgrounds. Every candidate
// renders even when fewer would do: the variants share no mid-flight
// state, so each one writes its indexed slot and dedupe runs once over
// the whole ordered set. Stopping early would need cross-variant
// coordination to keep the output order stable.
const maxCandidatePages = 8

// Generator renders event posters. It holds only read-only shared state
// (layout constants, fonts, assets); every render is a pure function of its
// inputs.
type Generator struct {
	layout     LayoutConfig
	assets     AssetCache
	fonts      *FontStore
	searcher   Searcher
	httpClient *http.Client
	icons      map[string]image.Image
	cta        string
	link       string
	linkURL    string
	logger     *slog.Logger
}

type Option func(*Generator) error

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		g.logger = logger
		return nil
	}
}

func WithLayout(cfg LayoutConfig) Option {
	return func(g *Generator) error {
		g.layout = cfg
		return nil
	}
}

func WithAssets(assets AssetCache) Option {
	return func(g *Generator) error {
		g.assets = assets
		return nil
	}
}

func WithFontStore(fonts *FontStore) Option {
	return func(g *Generator) error {
		g.fonts = fonts
		return nil
	}
}

func WithSearcher(s Searcher) Option {
	return func(g *Generator) error {
		g.searcher = s
		return nil
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(g *Generator) error {
		g.httpClient = c
		return nil
	}
}

// WithCallToAction overrides the footer texts and the URL the QR code
// encodes.
func WithCallToAction(cta, link, linkURL string) Option {
	return func(g *Generator) error {
		g.cta = cta
		g.link = link
		g.linkURL = linkURL
		return nil
	}
}

// WithConfig wires a loaded configuration: assets directory, search client
// and footer texts.
func WithConfig(cfg *config.Config) Option {
	return func(g *Generator) error {
		if cfg.CTAText != "" {
			g.cta = cfg.CTAText
		}
		if cfg.LinkText != "" {
			g.link = cfg.LinkText
		}
		if cfg.LinkURL != "" {
			g.linkURL = cfg.LinkURL
		}
		if cfg.AssetsDir != "" {
			assets, err := NewDirCache(cfg.AssetsDir, nil, g.logger)
			if err != nil {
				return err
			}
			g.assets = assets
		}
		if cfg.APIKey != "" {
			searcher, err := NewPexelsClient(cfg.APIKey, cfg.SearchEndpoint, cfg.PerPage, nil, g.logger)
			if err != nil {
				return err
			}
			g.searcher = searcher
		}
		return nil
	}
}

// New creates a Generator. Font loading happens here and is fatal on
// failure; everything else degrades at render time instead.
func New(ctx context.Context, opts ...Option) (_ *Generator, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	g := &Generator{
		layout:  DefaultLayout(),
		cta:     "Reserva tu lugar:",
		link:    "lu.ma/EXATEC-Alemania",
		linkURL: "https://lu.ma/EXATEC-Alemania",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if err := g.layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	if g.httpClient == nil {
		g.httpClient = newRetryClient(g.logger)
	}
	if c, ok := g.assets.(*DirCache); ok && c.httpClient == nil {
		c.httpClient = g.httpClient
	}
	if c, ok := g.searcher.(*PexelsClient); ok && c.httpClient == nil {
		c.httpClient = g.httpClient
	}
	if g.assets == nil {
		assets, err := NewDirCache(filepath.Join(config.DataHomePath(), "assets"), g.httpClient, g.logger)
		if err != nil {
			return nil, err
		}
		g.assets = assets
	}
	if g.fonts == nil {
		fonts, err := NewFontStore(ctx, g.assets)
		if err != nil {
			return nil, err
		}
		g.fonts = fonts
	}
	g.icons = g.loadIcons(ctx)
	return g, nil
}

// loadIcons resolves the decorative glyphs. Icons are optional: a missing
// or corrupt icon is logged and skipped, never fatal.
func (g *Generator) loadIcons(ctx context.Context) map[string]image.Image {
	icons := map[string]image.Image{}
	for _, key := range []string{"icon:clock", "icon:pin"} {
		b, err := g.assets.GetOrFetch(ctx, key)
		if err != nil {
			g.logger.Warn("skipping icon", slog.String("key", key), slog.String("error", err.Error()))
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			g.logger.Warn("skipping icon", slog.String("key", key), slog.String("error", err.Error()))
			continue
		}
		icons[key] = img
	}
	return icons
}

// CheckLogo reports whether the logo asset is available. The doctor command
// uses it; a missing logo only degrades renders, it does not fail them.
func (g *Generator) CheckLogo(ctx context.Context) error {
	_, err := g.assets.GetOrFetch(ctx, "logo")
	return errors.WithStack(err)
}

// RenderResult is one finished poster plus the context a caller needs to
// report on it.
type RenderResult struct {
	PNG        []byte
	Fit        *FitResult
	Background *Image // nil when the white-canvas fallback was used
	Query      string
	Page       int
	Warnings   []string
}

// Render produces a single poster for the record. The pipeline is strictly
// sequential: background, panel, typography fit, text layout, footer,
// flatten. Identical inputs and an identical resolved background yield
// byte-identical output.
func (g *Generator) Render(ctx context.Context, rec EventRecord) (_ *RenderResult, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	result := &RenderResult{
		Query: rec.BackgroundQuery,
		Page:  rec.page(),
	}

	bg := g.resolveBackground(ctx, rec.BackgroundQuery, rec.page())
	var bgImg image.Image
	if bg != nil {
		bgImg, err = bg.Image()
		if err != nil {
			g.logger.Warn("background fallback", slog.String("error", err.Error()))
			bg = nil
		}
	}
	result.Background = bg

	canvas := composeBackground(bgImg, g.layout)

	bounds := g.layout.TitleBounds()
	fit, err := Fit(
		g.fonts.Measurer(FontBold),
		rec.TitleLines(),
		bounds.Dx(), bounds.Dy(),
		g.layout.TitleStartSize, g.layout.TitleMinSize, g.layout.TitleSizeStep,
		g.layout.TitleSpacingFactor,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fit title: %w", err)
	}
	result.Fit = fit
	if fit.WrapFallback {
		g.logger.Info("title re-wrapped to fit panel", slog.Int("lines", len(fit.Lines)))
	}

	engine := &textLayout{cfg: g.layout, fonts: g.fonts, icons: g.icons}
	if err := engine.Draw(canvas, fit, rec.DatetimeText(), rec.Venue, rec.Address); err != nil {
		return nil, fmt.Errorf("failed to lay out text: %w", err)
	}

	footer := &footerComposer{
		cfg:     g.layout,
		fonts:   g.fonts,
		assets:  g.assets,
		cta:     g.cta,
		link:    g.link,
		linkURL: g.linkURL,
	}
	if err := footer.Compose(ctx, canvas); err != nil {
		var fe *FooterError
		if !errors.As(err, &fe) {
			return nil, err
		}
		g.logger.Warn(fe.Error())
		result.Warnings = append(result.Warnings, fe.Error())
	}

	png, err := encodePNG(canvas)
	if err != nil {
		return nil, fmt.Errorf("failed to encode poster: %w", err)
	}
	result.PNG = png
	g.logger.Info("rendered variant", slog.String("query", rec.BackgroundQuery), slog.Int("page", rec.page()))
	return result, nil
}

// RenderBatch renders up to want poster variants concurrently. Variants are
// independent pure computations sharing only read-only assets; the worker
// pool is bounded to the batch size and results keep request order via
// indexed slots. Near-duplicate backgrounds across candidate pages are
// dropped, so fewer than want posters may be returned. Cancelling ctx
// abandons in-flight variants; partial batches are discarded.
func (g *Generator) RenderBatch(ctx context.Context, rec EventRecord, want int) (_ []*RenderResult, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if want < 1 {
		return nil, fmt.Errorf("invalid batch size: %d", want)
	}
	candidates := want
	if rec.BackgroundQuery != "" {
		candidates = maxCandidatePages
	}
	variants := PlanVariants(rec, candidates)
	results := make([]*RenderResult, len(variants))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(want)
	for _, v := range variants {
		eg.Go(func() error {
			vr := rec
			vr.BackgroundQuery = v.Query
			vr.Page = v.Page
			res, err := g.Render(egCtx, vr)
			if err != nil {
				return fmt.Errorf("failed to render variant %d: %w", v.Index, err)
			}
			results[v.Index] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	kept := dedupeResults(results)
	if len(kept) > want {
		kept = kept[:want]
	}
	g.logger.Info("batch completed", slog.Int("requested", want), slog.Int("rendered", len(kept)))
	return kept, nil
}
