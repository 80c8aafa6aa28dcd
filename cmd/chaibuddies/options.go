package main

// Options is the root command that groups sub-commands. The struct tags are
// interpreted by github.com/jessevdk/go-flags.
type Options struct {
	Config string    `short:"f" long:"config" description:"config YAML path"`
	Chat   *ChatCmd  `command:"chat"  description:"Chat with personas in the terminal (default)"`
	Serve  *ServeCmd `command:"serve" description:"Start the HTTP and websocket API"`
}

// Init instantiates the sub-command referenced by the first argument so that
// flags.Parse can populate its fields.
func (o *Options) Init(firstArg string) {
	switch firstArg {
	case "chat":
		o.Chat = &ChatCmd{}
	case "serve":
		o.Serve = &ServeCmd{}
	}
}

// ChatCmd runs the terminal front-end
type ChatCmd struct {
	Log string `long:"log" description:"debug log file (default: <data dir>/chaibuddies.log)"`
}

// ServeCmd runs the browser API
type ServeCmd struct {
	Addr string `short:"a" long:"addr" description:"listen address (overrides server.addr)"`
}
