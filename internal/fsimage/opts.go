package fsimage

import (
	"fmt"

	"github.com/keshon/blockfs/internal/fs"
	"github.com/keshon/blockfs/internal/logger"
	"github.com/keshon/blockfs/internal/progress"
)

// Option configures a Builder.
type Option func(*Builder) error

// WithIgnore replaces the default ignore list.
func WithIgnore(patterns ...string) Option {
	return func(b *Builder) error {
		b.ignore = append([]string(nil), patterns...)
		return nil
	}
}

// WithLogger sets the logger used by every stage.
func WithLogger(log *logger.Logger) Option {
	return func(b *Builder) error {
		b.log = log
		return nil
	}
}

// WithProgress reports registered blocks to p during the walk.
func WithProgress(p *progress.ProgressTracker) Option {
	return func(b *Builder) error {
		b.progress = p
		return nil
	}
}

// WithChecksum writes an xxh3 sidecar next to each image.
func WithChecksum(on bool) Option {
	return func(b *Builder) error {
		b.checksum = on
		return nil
	}
}

// WithOutputFS writes images to out instead of the source filesystem.
func WithOutputFS(out fs.FS) Option {
	return func(b *Builder) error {
		if out == nil {
			return fmt.Errorf("output filesystem is nil")
		}
		b.out = out
		return nil
	}
}
