package command

import (
	"fmt"
)

// Node is one command in the tree. A command's name and its aliases all
// point at the same Node.
type Node struct {
	Cmd         Command
	Subcommands map[string]*Node
}

// CommandTree indexes commands by name and alias.
type CommandTree struct {
	root *Node
}

func NewTree() *CommandTree {
	return &CommandTree{
		root: &Node{Subcommands: make(map[string]*Node)},
	}
}

// Register adds cmd and its subcommands. A later command with the same
// name or alias replaces the earlier one.
func (t *CommandTree) Register(cmd Command) {
	t.insert(t.root, cmd)
}

// Get returns a top-level command by name or alias.
func (t *CommandTree) Get(name string) (Command, bool) {
	node, ok := t.root.Subcommands[name]
	if !ok {
		return nil, false
	}
	return node.Cmd, true
}

func (t *CommandTree) insert(parent *Node, cmd Command) {
	node := &Node{Cmd: cmd, Subcommands: make(map[string]*Node)}
	for _, subcmd := range cmd.Subcommands() {
		t.insert(node, subcmd)
	}
	for _, n := range append([]string{cmd.Name()}, cmd.Aliases()...) {
		parent.Subcommands[n] = node
	}
}

// Resolve follows args down the tree as far as they name commands and
// returns the deepest command with the arguments left over.
func (t *CommandTree) Resolve(args []string) (*Node, []string, error) {
	node := t.root
	for len(args) > 0 {
		next, ok := node.Subcommands[args[0]]
		if !ok {
			break
		}
		node = next
		args = args[1:]
	}
	if node.Cmd == nil {
		if len(args) > 0 {
			return nil, nil, fmt.Errorf("unknown command %q", args[0])
		}
		return nil, nil, fmt.Errorf("no command provided")
	}
	return node, args, nil
}
