package command

import "flag"

// Command represents a cli command
type Command interface {
	Name() string
	Short() string
	Aliases() []string
	Usage() string
	Brief() string
	Help() string
	Subcommands() []Command
	Flags(fs *flag.FlagSet)
	Run(ctx *Context) error
}

// Context represents a cli context
type Context struct {
	Args  []string
	Flags *flag.FlagSet
}

// Explicit reports whether the named flag was given on the command line.
func (c *Context) Explicit(name string) bool {
	if c.Flags == nil {
		return false
	}
	found := false
	c.Flags.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// String returns the value of a string flag, or "" if it is not defined.
func (c *Context) String(name string) string {
	if c.Flags == nil {
		return ""
	}
	if f := c.Flags.Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

// Bool returns the value of a boolean flag.
func (c *Context) Bool(name string) bool {
	if c.Flags == nil {
		return false
	}
	if f := c.Flags.Lookup(name); f != nil {
		if g, ok := f.Value.(flag.Getter); ok {
			if v, ok := g.Get().(bool); ok {
				return v
			}
		}
	}
	return false
}

// Int returns the value of an int flag.
func (c *Context) Int(name string) int {
	if c.Flags == nil {
		return 0
	}
	if f := c.Flags.Lookup(name); f != nil {
		if g, ok := f.Value.(flag.Getter); ok {
			if v, ok := g.Get().(int); ok {
				return v
			}
		}
	}
	return 0
}

// StringList collects a repeatable string flag.
type StringList []string

func (s *StringList) String() string {
	if s == nil {
		return ""
	}
	out := ""
	for i, v := range *s {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}

func (s *StringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func (s *StringList) Get() any { return []string(*s) }

// Strings returns the values collected for a StringList flag.
func (c *Context) Strings(name string) []string {
	if c.Flags == nil {
		return nil
	}
	if f := c.Flags.Lookup(name); f != nil {
		if l, ok := f.Value.(*StringList); ok {
			return append([]string(nil), *l...)
		}
	}
	return nil
}
