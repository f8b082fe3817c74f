package middleware

import (
	"flag"
	"fmt"
	"os"

	"github.com/keshon/blockfs/internal/command"
	"github.com/keshon/blockfs/internal/config"
)

// WithDebugArgsPrint prints the parsed arguments of a command before it runs
// when BLOCKFS_DEV is set.
func WithDebugArgsPrint() command.Middleware {
	return func(cmd command.Command) command.Command {
		return &command.WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *command.Context) error {
				if config.IsDev {
					fmt.Fprintf(os.Stderr, "Args: %+v\n", ctx.Args)
					if ctx.Flags != nil {
						ctx.Flags.Visit(func(f *flag.Flag) {
							fmt.Fprintf(os.Stderr, "Flag: -%s=%s\n", f.Name, f.Value)
						})
					}
				}
				return cmd.Run(ctx)
			},
		}
	}
}
