package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/keshon/blockfs/internal/command"
	_ "github.com/keshon/blockfs/internal/command/build"
	_ "github.com/keshon/blockfs/internal/command/help"
	_ "github.com/keshon/blockfs/internal/command/verify"
	"github.com/keshon/blockfs/internal/fsimage/format"
)

func main() {
	tplBytes, err := os.ReadFile("README.md.tmpl")
	if err != nil {
		fmt.Printf("Failed to read template: %v\n", err)
		os.Exit(1)
	}

	outFile, err := os.Create("README.md")
	if err != nil {
		fmt.Printf("Failed to create README.md: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	if err := render(outFile, string(tplBytes)); err != nil {
		fmt.Printf("Failed to render template: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("README.md generated successfully")
}

// render fills the README template with one section per registered command
// and the image format constants.
func render(w io.Writer, tplText string) error {
	tpl, err := template.New("readme").Parse(tplText)
	if err != nil {
		return err
	}

	commands := command.AllCommands()
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name() < commands[j].Name()
	})

	var sections strings.Builder
	for _, cmd := range commands {
		fmt.Fprintf(&sections,
			"### %s\n```\n%s\n\n%s\n```\n\n",
			cmd.Name(),
			cmd.Usage(),
			cmd.Help(),
		)
	}

	data := map[string]any{
		"CommandSections": sections.String(),
		"BlockSize":       format.BlockSize,
		"MagicDirectory":  fmt.Sprintf("0x%08X", format.MagicDirectory),
		"MagicFileEntry":  fmt.Sprintf("0x%08X", format.MagicFileEntry),
		"NameLen":         format.NameLen,
		"MaxFilesPerDir":  format.MaxFilesPerDir,
		"MaxFileSize":     format.MaxFileSize,
		"DataCapacity":    format.DataCapacity,
	}
	return tpl.Execute(w, data)
}
