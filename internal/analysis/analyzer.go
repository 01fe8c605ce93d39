package analysis

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"deptrim/internal/collector"
	"deptrim/internal/config"
	"deptrim/internal/declaration"
	"deptrim/internal/errors"
	"deptrim/internal/paths"
	"deptrim/internal/syntax"
	"deptrim/internal/usage"
)

// Analyzer runs the whole classification over a project tree.
type Analyzer struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *collector.Collector
	extractor *declaration.Extractor
	provider  *syntax.Provider
	detector  *usage.Detector
}

// NewAnalyzer wires the pipeline stages from cfg.
func NewAnalyzer(cfg *config.Config, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		logger:    logger,
		collector: collector.New(cfg.Scan, cfg.Usage),
		extractor: declaration.NewExtractor(),
		provider:  syntax.NewProvider(),
		detector:  usage.NewDetector(cfg.Usage),
	}
}

// Run analyzes every source file under root against the declared
// dependencies. Files are processed concurrently and folded in traversal
// order, so the report is identical for identical trees. Per-file failures
// become diagnostics. If ctx is canceled nothing is returned but a
// Canceled error; a partial report would under-report usage.
func (a *Analyzer) Run(ctx context.Context, root string, declared []string) (*Report, error) {
	start := time.Now()
	logger := a.logger.With("run", uuid.NewString())

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.New(errors.IOError, "cannot resolve project root", err).WithPath(root)
	}

	files, err := a.collector.Collect(ctx, absRoot)
	if err != nil {
		return nil, err
	}

	logger.Info("Collected source files", "root", absRoot, "files", len(files))
	if len(files) > 0 && !syntax.IsAvailable() {
		logger.Warn("Syntax trees unavailable (built without CGO); no usage will be confirmed")
	}

	facts, err := a.analyzeAll(ctx, absRoot, files, logger)
	if err != nil {
		logger.Warn("Analysis canceled", "files", len(files))
		return nil, err
	}

	state := NewState()
	for _, f := range facts {
		state = state.Fold(f)
	}
	report := state.Report(declared, a.cfg.Scan.IgnoreBuiltins)

	logger.Info("Analysis complete",
		"files", report.FilesScanned,
		"used", len(report.Used),
		"importedButUnused", len(report.ImportedButUnused),
		"neverImported", len(report.NeverImported),
		"diagnostics", len(report.Diagnostics),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return report, nil
}

// analyzeAll runs AnalyzeFile over files with a bounded pool. Results are
// slotted by index so the fold sees traversal order.
func (a *Analyzer) analyzeAll(ctx context.Context, root string, files []string, logger *slog.Logger) ([]FileFacts, error) {
	facts := make([]FileFacts, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Scan.EffectiveWorkers())

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			facts[i] = a.AnalyzeFile(gctx, path, root)
			for _, d := range facts[i].Diagnostics {
				logger.Warn("File diagnostic", "path", d.Path, "kind", d.Kind, "error", d.Message)
			}
			return nil
		})
	}

	werr := g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, errors.New(errors.Canceled, "analysis canceled", err)
	}
	if werr != nil {
		return nil, werr
	}
	return facts, nil
}

// AnalyzeFile extracts declarations from one file and, when it has any,
// confirms their usage on its syntax tree.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path, root string) FileFacts {
	src, err := a.collector.Read(path, root)
	if err != nil {
		rel := relPath(path, root)
		if stderrors.Is(err, collector.ErrTooLarge) {
			return FileFacts{Path: rel, Diagnostics: []Diagnostic{{Path: rel, Kind: DiagSkipped, Message: err.Error()}}}
		}
		rerr := errors.New(errors.FileReadError, "cannot read file", err)
		return FileFacts{Path: rel, Diagnostics: []Diagnostic{{Path: rel, Kind: DiagRead, Message: rerr.Error()}}}
	}

	facts := FileFacts{
		Path:     src.RelPath,
		Bindings: a.extractor.Extract(src.RelPath, src.Text),
	}
	// Nothing to confirm; skip the parse
	if len(facts.Bindings) == 0 {
		return facts
	}

	tree, err := a.provider.Parse(ctx, src.Text, syntax.OptionsFor(src.Ext(), src.Kind == collector.KindMarkup))
	if err != nil {
		facts.Diagnostics = append(facts.Diagnostics, Diagnostic{Path: src.RelPath, Kind: DiagParse, Message: err.Error()})
		return facts
	}
	defer tree.Close()

	facts.Signals = a.detector.Detect(tree, src.Kind, facts.Bindings)
	return facts
}

func relPath(path, root string) string {
	rel, err := paths.Relative(root, path)
	if err != nil {
		return paths.Slash(path)
	}
	return rel
}
