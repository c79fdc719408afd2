package diff

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylediff/assets"
	"stylediff/css"
)

// Source is a named stylesheet text.
type Source struct {
	Name string
	Data []byte
}

// Result of a diff.
type Result struct {
	Output []byte
	// Sheet is the residual stylesheet Output was rendered from.
	Sheet *css.Stylesheet
	// Indexes holds baseline index of every pass in order.
	Indexes []*Index
}

// Differ runs diffs with fixed options.
type Differ struct {
	opts   Options
	parser *css.Parser
	log    *zap.Logger
}

// New creates Differ.
func New(opts Options, log *zap.Logger) *Differ {
	if log == nil {
		log = zap.NewNop()
	}
	return &Differ{opts: opts, parser: css.NewParser(log), log: log.Named("diff")}
}

// Options returns options differ was created with.
func (d *Differ) Options() Options {
	return d.opts
}

// Diff subtracts baselines from main and returns resulting stylesheet text.
// Baselines are applied one after another, each to the result of the
// previous one. Without baselines main is returned unchanged.
func (d *Differ) Diff(ctx context.Context, main []byte, baselines ...[]byte) ([]byte, error) {
	sources := make([]Source, 0, len(baselines))
	for i, b := range baselines {
		sources = append(sources, Source{Name: fmt.Sprintf("baseline #%d", i+1), Data: b})
	}
	res, err := d.DiffSources(ctx, Source{Name: "main", Data: main}, sources...)
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// DiffSources is Diff for named inputs. Names are used in errors and logs.
func (d *Differ) DiffSources(ctx context.Context, main Source, baselines ...Source) (*Result, error) {
	if len(baselines) == 0 {
		d.log.Debug("No baselines, nothing to subtract", zap.String("main", main.Name))
		return &Result{Output: main.Data}, nil
	}

	sheet, err := d.parse(main)
	if err != nil {
		return nil, err
	}

	var resolver *assets.Resolver
	if !d.opts.Strict {
		// shared by all passes, so every asset is read once
		resolver = assets.NewResolver(d.opts.Cwd, d.log)
	}

	res := &Result{Sheet: sheet}
	for _, b := range baselines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		base, err := d.parse(b)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		idx := BuildIndex(base.Nodes)
		nodes, err := NewComparer(idx, d.opts, resolver, d.log).Reconcile(sheet.Nodes)
		if err != nil {
			return nil, err
		}
		sheet.SetNodes(nodes)
		res.Indexes = append(res.Indexes, idx)

		d.log.Debug("Baseline subtracted",
			zap.String("baseline", b.Name),
			zap.Int("keys", idx.Len()),
			zap.Int("nodes", len(nodes)),
			zap.Duration("elapsed", time.Since(start)))
	}

	out, err := css.Format{Compact: d.opts.Minify}.Bytes(sheet)
	if err != nil {
		return nil, newError(SerializationFailure, main.Name, err)
	}
	res.Output = out
	return res, nil
}

// DiffFiles reads stylesheets from files and diffs them. When options have no
// working directory, assets are resolved relative to main file.
func DiffFiles(ctx context.Context, opts Options, log *zap.Logger, mainPath string, baselinePaths ...string) (*Result, error) {
	main, err := readSource(mainPath)
	if err != nil {
		return nil, err
	}

	var (
		errs      error
		baselines = make([]Source, 0, len(baselinePaths))
	)
	for _, p := range baselinePaths {
		s, err := readSource(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		baselines = append(baselines, s)
	}
	if errs != nil {
		return nil, errs
	}

	if opts.Cwd == "" {
		opts.Cwd = filepath.Dir(mainPath)
	}
	return New(opts, log).DiffSources(ctx, main, baselines...)
}

func readSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("unable to read stylesheet: %w", err)
	}
	return Source{Name: path, Data: data}, nil
}

// parse prepares text and parses it, all failures are ParseFailure.
func (d *Differ) parse(src Source) (*css.Stylesheet, error) {
	data, err := css.Decode(src.Data)
	if err != nil {
		return nil, newError(ParseFailure, src.Name, err)
	}
	if d.opts.Normalize {
		if data, err = css.Normalize(data); err != nil {
			return nil, newError(ParseFailure, src.Name, err)
		}
	}
	sheet, err := d.parser.Parse(data, src.Name)
	if err != nil {
		return nil, newError(ParseFailure, src.Name, err)
	}
	return sheet, nil
}
