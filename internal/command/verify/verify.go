package verify

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/keshon/blockfs/internal/command"
	"github.com/keshon/blockfs/internal/fs"
	"github.com/keshon/blockfs/internal/fsimage/format"
	imgverify "github.com/keshon/blockfs/internal/fsimage/verify"
	"github.com/keshon/blockfs/internal/logger"
	"github.com/keshon/blockfs/internal/middleware"
	"github.com/keshon/blockfs/internal/util"
)

// Stdout receives the scan output.
var Stdout io.Writer = os.Stdout

type Command struct{}

func (c *Command) Name() string      { return "verify" }
func (c *Command) Short() string     { return "V" }
func (c *Command) Aliases() []string { return []string{"check"} }
func (c *Command) Usage() string     { return "verify [options] <image>" }
func (c *Command) Brief() string     { return "Check the structure of a built image" }
func (c *Command) Help() string {
	return `Decode every block of an image and check that they form the tree
the builder writes. Each block is OK, Damaged (cannot be decoded or breaks a
pointer rule) or Orphaned (nothing points at it). If <image>.xxh3 exists the
digest is compared as well.

Options:
  -report <path>  Write the full report as JSON.
  -workers <n>    Decoding goroutines (default: one per CPU).
  -debug          Log decoding details to stderr.`
}

func (c *Command) Subcommands() []command.Command { return nil }
func (c *Command) Flags(fs *flag.FlagSet) {
	fs.String("report", "", "write a JSON report")
	fs.Int("workers", 0, "decoding goroutines")
	fs.Bool("debug", false, "debug logging")
}

func (c *Command) Run(ctx *command.Context) error {
	if len(ctx.Args) != 1 {
		return fmt.Errorf("%w: usage: %s", format.ErrInvalidInput, c.Usage())
	}
	image := ctx.Args[0]

	log := logger.Discard()
	if ctx.Bool("debug") {
		log = logger.New(os.Stderr, true)
	}

	osfs := fs.NewOSFS()
	start := time.Now()
	rep, err := imgverify.New(osfs, ctx.Int("workers"), log).Verify(image)
	if err != nil {
		return err
	}
	printReport(rep, time.Since(start))

	if path := ctx.String("report"); path != "" {
		if err := util.WriteJSON(osfs, path, rep); err != nil {
			return fmt.Errorf("write report %q: %w", path, err)
		}
		fmt.Fprintf(Stdout, "Report written to %s\n", path)
	}

	if !rep.OK() {
		return fmt.Errorf("image %s failed verification", image)
	}
	return nil
}

func printReport(rep *imgverify.Report, elapsed time.Duration) {
	for _, p := range rep.Problems {
		color := "\033[33m"
		if p.Status == imgverify.Orphaned {
			color = "\033[31m"
		}
		name := ""
		if p.Name != "" {
			name = fmt.Sprintf(" %q", p.Name)
		}
		fmt.Fprintf(Stdout, "%s%-8s\033[0m block %d (%s%s): %s\n", color, p.Status, p.Index, p.Kind, name, p.Problem)
	}
	if len(rep.Problems) > 0 {
		fmt.Fprintln(Stdout)
	}

	damaged := rep.Count(imgverify.Damaged)
	orphaned := rep.Count(imgverify.Orphaned)
	fmt.Fprintf(Stdout, "Scan complete in %s.\n", elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(Stdout, "Blocks: %d (%d directories, %d files, %d data)\n",
		rep.Blocks, rep.Directories, rep.Files, rep.Data)
	fmt.Fprintf(Stdout, "Blocks OK: \033[32m%d\033[0m   Damaged: \033[33m%d\033[0m   Orphaned: \033[31m%d\033[0m\n",
		rep.Blocks-damaged-orphaned, damaged, orphaned)
	fmt.Fprintf(Stdout, "xxh3-128: %s (sidecar: %s)\n", rep.Checksum, rep.ChecksumStatus)
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&Command{},
			middleware.WithDebugArgsPrint(),
		),
	)
}
