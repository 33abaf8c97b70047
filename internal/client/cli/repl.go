package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Pools(ctx context.Context) error
	AddPool(ctx context.Context) error
	EditPool(ctx context.Context, id string) error
	DeletePool(ctx context.Context, id string) error
	Analyze(ctx context.Context, poolID string) error
	History(ctx context.Context, poolID string) error
	Sync(ctx context.Context) error
	Settings(ctx context.Context, args []string) error
	SetLanguage(ctx context.Context, lang string) error
}

const (
	helpGuest = "Available commands: register, login, pools, addpool, editpool <id>, delpool <id>, analyze [pool-id], history [pool-id], settings [set <field> <value>], lang <pt|en|es>, exit"
	helpUser  = "Available commands: pools, addpool, editpool <id>, delpool <id>, analyze [pool-id], history [pool-id], sync, settings [set <field> <value>], lang <pt|en|es>, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the SmartPool CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sp %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "pools", "list":
			_ = a.Pools(ctx)

		case "addpool":
			_ = a.AddPool(ctx)

		case "editpool":
			_ = a.EditPool(ctx, arg)

		case "delpool":
			if arg == "" {
				printlnFn("Usage: delpool <id>")
				continue
			}
			_ = a.DeletePool(ctx, arg)

		case "analyze":
			_ = a.Analyze(ctx, arg)

		case "history":
			_ = a.History(ctx, arg)

		case "sync":
			_ = a.Sync(ctx)

		case "settings":
			_ = a.Settings(ctx, parts[1:])

		case "lang":
			if arg == "" {
				printlnFn("Usage: lang <pt|en|es>")
				continue
			}
			_ = a.SetLanguage(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
