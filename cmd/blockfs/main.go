package main

import (
	"os"

	"github.com/keshon/blockfs/internal/command"
	_ "github.com/keshon/blockfs/internal/command/build"
	_ "github.com/keshon/blockfs/internal/command/help"
	_ "github.com/keshon/blockfs/internal/command/verify"
)

func main() {
	command.RunCLI(os.Args[1:])
}
