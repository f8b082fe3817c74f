package build

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/keshon/blockfs/internal/command"
	"github.com/keshon/blockfs/internal/config"
	"github.com/keshon/blockfs/internal/fs"
	"github.com/keshon/blockfs/internal/fsimage"
	"github.com/keshon/blockfs/internal/fsimage/format"
	"github.com/keshon/blockfs/internal/logger"
	"github.com/keshon/blockfs/internal/middleware"
	"github.com/keshon/blockfs/internal/progress"
)

// Stdout receives the progress spinner and the summary.
var Stdout io.Writer = os.Stdout

// Stderr receives log lines when no -log file is given.
var Stderr io.Writer = os.Stderr

type Command struct{}

func (c *Command) Name() string      { return "build" }
func (c *Command) Short() string     { return "B" }
func (c *Command) Aliases() []string { return []string{"b", "mkfs"} }
func (c *Command) Usage() string     { return "build [options] <input> [output]" }
func (c *Command) Brief() string     { return "Build a block image from a directory" }
func (c *Command) Help() string {
	return `Convert a directory tree into a flat image of 4096-byte blocks.
The output defaults to ./files/fs.img and is replaced if it exists.

Options:
  -o <path>          Output image (same as the second argument).
  -config <path>     Config file (default .blockfs.json, optional).
  -ignore <pattern>  Skip matching files and directories. Repeatable.
  -checksum          Write an xxh3 digest to <output>.xxh3.
  -mmap              Read source files through a memory map (default true).
  -q                 No progress or summary.
  -debug             Log every directory and file.
  -log <path>        Append log lines to a file instead of stderr.

In the short form "blockfs <input> [output]" an input named like a command
or alias (build, b, mkfs, verify, check, help, h) runs that command instead.
Use "blockfs build <input>" or a path such as ./b for those.

Examples:
  blockfs build ./rootfs
  blockfs build -checksum -ignore '*.swp' ./rootfs out/fs.img
  blockfs ./rootfs out/fs.img`
}

func (c *Command) Subcommands() []command.Command { return nil }
func (c *Command) Flags(fs *flag.FlagSet) {
	fs.String("o", "", "output image path")
	fs.String("config", config.DefaultConfigFile, "config file")
	fs.Var(&command.StringList{}, "ignore", "ignore pattern (repeatable)")
	fs.Bool("checksum", false, "write an xxh3 sidecar")
	fs.Bool("mmap", true, "memory map source files")
	fs.Bool("q", false, "quiet")
	fs.Bool("debug", false, "debug logging")
	fs.String("log", "", "log file")
}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) == 0 || len(ctx.Args) > 2 {
		return fmt.Errorf("%w: usage: %s", format.ErrInvalidInput, c.Usage())
	}
	input := ctx.Args[0]

	osfs := fs.NewOSFS()
	cfg, err := loadConfig(osfs, ctx)
	if err != nil {
		return err
	}

	output := cfg.Output
	if ctx.Explicit("o") {
		output = ctx.String("o")
	}
	if len(ctx.Args) == 2 {
		if ctx.Explicit("o") && ctx.Args[1] != output {
			return fmt.Errorf("%w: output given twice (%q and %q)", format.ErrInvalidInput, output, ctx.Args[1])
		}
		output = ctx.Args[1]
	}

	quiet := ctx.Bool("q")
	log, err := openLogger(ctx, cfg.Debug, quiet)
	if err != nil {
		return err
	}
	defer log.Close()

	var src fs.FS = osfs
	if ctx.Bool("mmap") {
		src = fs.NewMappedFS(osfs)
	}

	var p *progress.ProgressTracker
	if !quiet {
		p = progress.NewProgressTo(Stdout, 0, "Registering blocks", "blocks")
	}

	b, err := fsimage.New(src,
		fsimage.WithIgnore(cfg.Ignore...),
		fsimage.WithLogger(log),
		fsimage.WithProgress(p),
		fsimage.WithChecksum(cfg.Checksum),
		fsimage.WithOutputFS(osfs),
	)
	if err != nil {
		p.Finish()
		return err
	}

	sum, err := b.Create(input, output)
	p.Finish()
	if err != nil {
		// RunCLI prints the error to stderr; repeat it only in a log file
		if ctx.String("log") != "" {
			log.Error("%v", err)
		}
		return err
	}

	if !quiet {
		printSummary(sum)
	}
	return nil
}

// loadConfig reads the config file and applies flag overrides. An explicit
// -config must exist; the default one is optional.
func loadConfig(fsys fs.FS, ctx *command.Context) (config.Config, error) {
	path := ctx.String("config")
	if ctx.Explicit("config") && !fsys.Exists(path) {
		return config.Config{}, fmt.Errorf("config file %q not found", path)
	}

	cfg, err := config.Load(fsys, path)
	if err != nil {
		return cfg, err
	}

	cfg.Ignore = append(cfg.Ignore, ctx.Strings("ignore")...)
	if ctx.Explicit("checksum") {
		cfg.Checksum = ctx.Bool("checksum")
	}
	if ctx.Explicit("debug") {
		cfg.Debug = ctx.Bool("debug")
	}
	return cfg, nil
}

func openLogger(ctx *command.Context, debug, quiet bool) (*logger.Logger, error) {
	if path := ctx.String("log"); path != "" {
		return logger.NewFile(path, debug)
	}
	if quiet && !debug {
		return logger.Discard(), nil
	}
	return logger.New(Stderr, debug), nil
}

func printSummary(sum fsimage.Summary) {
	fmt.Fprintf(Stdout, "Image:        %s\n", sum.Path)
	fmt.Fprintf(Stdout, "Source:       %s\n", sum.Source)
	fmt.Fprintf(Stdout, "Blocks:       %d (%d directories, %d files, %d data)\n",
		sum.Blocks, sum.Directories, sum.Files, sum.DataBlocks)
	fmt.Fprintf(Stdout, "Size:         %d bytes\n", sum.Size)
	fmt.Fprintf(Stdout, "xxh3-128:     %s\n", sum.Checksum)
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithDebugArgsPrint(),
		),
	)
}
