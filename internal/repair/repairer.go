package repair

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"unicode/utf8"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/simonhull/firebird-suite/prismafix/internal/fileop"
)

var (
	// ErrNotFound means the schema file does not exist.
	ErrNotFound = errors.New("schema file not found")

	// ErrPermission means the schema file cannot be read or written.
	ErrPermission = errors.New("schema file not accessible")
)

// Result describes one repair of a schema file.
type Result struct {
	Path    string
	Before  string
	After   string
	Removed []RemovedLine

	// Written is true when the file on disk was replaced.
	Written bool
}

// Changed reports whether repairing altered the document.
func (r *Result) Changed() bool {
	return r.Before != r.After
}

// WriteOptions controls how RepairFile writes its result.
type WriteOptions struct {
	DryRun bool
	Backup bool

	// SkipUnchanged leaves the file alone when there is nothing to fix.
	SkipUnchanged bool
}

// Repairer reads, fixes and rewrites schema files.
type Repairer struct {
	fs    afero.Fs
	rules []Rule
	log   *zap.Logger
}

// Option configures a Repairer.
type Option func(*Repairer)

// WithRules replaces the default tenants/Tenant rule.
func WithRules(rules ...Rule) Option {
	return func(r *Repairer) {
		if len(rules) > 0 {
			r.rules = rules
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(r *Repairer) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Repairer working on fsys.
func New(fsys afero.Fs, opts ...Option) *Repairer {
	r := &Repairer{
		fs:    fsys,
		rules: DefaultRules(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rules returns the rules this repairer applies.
func (r *Repairer) Rules() []Rule {
	return r.rules
}

// Load reads path and computes the repaired document without writing it.
func (r *Repairer) Load(path string) (*Result, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, classify("read", path, err)
	}
	if !utf8.Valid(data) {
		r.log.Warn("schema is not valid UTF-8", zap.String("path", path))
	}

	before := string(data)
	after, removed := Repair(before, r.rules...)

	r.log.Debug("schema loaded",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
		zap.Int("removed", len(removed)))

	return &Result{
		Path:    path,
		Before:  before,
		After:   after,
		Removed: removed,
	}, nil
}

// RepairFile reads path, repairs it in memory and replaces the file with
// the result. Nothing is written if reading fails or ctx is done.
func (r *Repairer) RepairFile(ctx context.Context, path string, opts WriteOptions) (*Result, error) {
	res, err := r.Load(path)
	if err != nil {
		return nil, err
	}
	if err := r.Write(ctx, res, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// Write replaces res.Path with res.After. It is used after Load when the
// caller wants to inspect or confirm the result before writing.
func (r *Repairer) Write(ctx context.Context, res *Result, opts WriteOptions) error {
	if opts.SkipUnchanged && !res.Changed() {
		r.log.Debug("schema already clean", zap.String("path", res.Path))
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err := fileop.Replace(r.fs, res.Path, []byte(res.After), fileop.Options{
		Backup: opts.Backup,
		DryRun: opts.DryRun,
	})
	if err != nil {
		return classify("write", res.Path, err)
	}
	res.Written = !opts.DryRun

	for _, line := range res.Removed {
		r.log.Info("removed relation field",
			zap.String("path", res.Path),
			zap.Int("line", line.Number),
			zap.String("text", line.Text),
			zap.Bool("dry_run", opts.DryRun))
	}

	return nil
}

// classify tags filesystem errors with ErrNotFound or ErrPermission.
func classify(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %s: %w: %w", op, path, ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s %s: %w: %w", op, path, ErrPermission, err)
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}
