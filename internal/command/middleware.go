package command

// Middleware wraps a command with behavior that runs around it.
type Middleware func(Command) Command

// WrappedCommand is a Command whose Run is replaced by Wrap. Every other
// method goes to the embedded command.
type WrappedCommand struct {
	Command
	Wrap func(ctx *Context) error
}

func (w *WrappedCommand) Run(ctx *Context) error {
	if w.Wrap != nil {
		return w.Wrap(ctx)
	}
	return w.Command.Run(ctx)
}

// Unwrap returns the command inside w.
func (w *WrappedCommand) Unwrap() Command { return w.Command }

// ApplyMiddlewares wraps cmd so that mws run in the order given: the first
// middleware is the outermost.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		cmd = mws[i](cmd)
	}
	return cmd
}
