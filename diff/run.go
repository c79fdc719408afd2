package diff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"stylediff/config"
	"stylediff/state"
)

// OptionsFromConfig converts configuration section to diff options.
func OptionsFromConfig(cfg *config.DiffConfig) Options {
	return Options{
		Strict:           cfg.Strict,
		Cwd:              cfg.Cwd,
		FailOnAssetError: cfg.FailOnAssetError,
		Minify:           cfg.Minify,
		Normalize:        cfg.Normalize,
	}
}

// Run is the "diff" command action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("diff")

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return errors.New("no main stylesheet has been specified")
	}
	if len(args) == 1 {
		log.Warn("No baseline stylesheets specified, main stylesheet will be copied as is")
	}

	opts := OptionsFromConfig(&env.Cfg.Diff)
	if cmd.IsSet("strict") {
		opts.Strict = cmd.Bool("strict")
	}
	if cmd.IsSet("cwd") {
		opts.Cwd = cmd.String("cwd")
	}
	if cmd.IsSet("minify") {
		opts.Minify = cmd.Bool("minify")
	}
	if cmd.IsSet("normalize") {
		opts.Normalize = cmd.Bool("normalize")
	}
	if cmd.IsSet("fail-on-asset-error") {
		opts.FailOnAssetError = cmd.Bool("fail-on-asset-error")
	}

	dst := cmd.String("out")
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}

	log.Info("Processing starting",
		zap.String("main", args[0]),
		zap.Strings("baselines", args[1:]),
		zap.String("destination", dst),
		zap.Bool("strict", opts.Strict))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	for i, p := range args {
		if err := env.Rpt.StoreCopy(fmt.Sprintf("input/%02d-%s", i, filepath.Base(p)), p); err != nil {
			log.Warn("Unable to store input in debug report", zap.String("file", p), zap.Error(err))
		}
	}

	res, err := DiffFiles(ctx, opts, env.Log, args[0], args[1:]...)
	if err != nil {
		return fmt.Errorf("unable to diff stylesheets: %w", err)
	}

	if env.Rpt != nil {
		for i, idx := range res.Indexes {
			env.Rpt.StoreData(fmt.Sprintf("index/%02d.txt", i+1), []byte(idx.Dump()))
		}
		env.Rpt.StoreData("output.css", res.Output)
	}

	return writeOutput(env.Stdout, dst, res.Output, log)
}

// writeOutput writes result to file or to stdout when dst is empty. Nothing
// is written when diff fails.
func writeOutput(stdout io.Writer, dst string, data []byte, log *zap.Logger) error {
	if len(dst) == 0 {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("unable to write result: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create destination directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("unable to write result to '%s': %w", dst, err)
	}
	log.Info("Result written", zap.String("file", dst), zap.Int("bytes", len(data)))
	return nil
}
