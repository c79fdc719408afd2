package diff

import (
	"go.uber.org/zap"

	"stylediff/assets"
	"stylediff/css"
)

// Comparer subtracts one baseline index from main stylesheet rules.
type Comparer struct {
	opts     Options
	index    *Index
	resolver *assets.Resolver
	log      *zap.Logger
}

// NewComparer creates comparer for index. Resolver is only consulted in non
// strict mode, when nil one rooted at opts.Cwd is created.
func NewComparer(index *Index, opts Options, resolver *assets.Resolver, log *zap.Logger) *Comparer {
	if log == nil {
		log = zap.NewNop()
	}
	if resolver == nil && !opts.Strict {
		resolver = assets.NewResolver(opts.Cwd, log)
	}
	return &Comparer{opts: opts, index: index, resolver: resolver, log: log}
}

// Equal decides whether two declarations define the same style. Besides
// literal equality, in non strict mode url() values referencing the same
// asset are equal, whether the asset is a local file or inlined as data URI.
//
// When an asset cannot be read the declarations are considered different,
// unless FailOnAssetError is set, in which case AssetReadFailure is
// returned.
func (c *Comparer) Equal(a, b css.Declaration) (bool, error) {
	if !a.IsStyle() || !b.IsStyle() {
		return false, nil
	}
	if a.Property == b.Property && a.Value == b.Value {
		return true, nil
	}
	if c.opts.Strict || a.Property != b.Property {
		return false, nil
	}
	// only url() values may differ literally and still be equal
	if len(assets.URLs(a.Value)) == 0 || len(assets.URLs(b.Value)) == 0 {
		return false, nil
	}

	ia, ok, err := c.resolver.ValueIdentity(a.Value)
	if !ok || err != nil {
		return false, c.assetFailure(a, err)
	}
	ib, ok, err := c.resolver.ValueIdentity(b.Value)
	if !ok || err != nil {
		return false, c.assetFailure(b, err)
	}
	return ia == ib, nil
}

func (c *Comparer) assetFailure(d css.Declaration, err error) error {
	if err == nil {
		return nil
	}
	if c.opts.FailOnAssetError {
		var source string
		if refs := assets.URLs(d.Value); len(refs) > 0 {
			source = refs[0]
		}
		return newError(AssetReadFailure, source, err)
	}
	c.log.Warn("Unable to compare asset, declaration is kept",
		zap.String("property", d.Property), zap.String("value", shorten(d.Value)), zap.Error(err))
	return nil
}

// shorten keeps inline data out of the logs.
func shorten(s string) string {
	const limit = 80
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// contained reports whether d is equal to any of decls.
func (c *Comparer) contained(d css.Declaration, decls []css.Declaration) (bool, error) {
	for _, b := range decls {
		eq, err := c.Equal(b, d)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}
