package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Google(ctx context.Context) error
	Token(ctx context.Context, token string) error
	Logout(ctx context.Context) error
	NewChat(ctx context.Context) error
	Open(ctx context.Context, ref string) error
	List(ctx context.Context) error
	Say(ctx context.Context, text string) error
	Rename(ctx context.Context, title string) error
	Pin(ctx context.Context) error
	Archive(ctx context.Context) error
	Delete(ctx context.Context, ref string) error
}

const (
	helpSignedOut = "Available commands: register, login, google, token <jwt>, exit"
	helpSignedIn  = "Available commands: new, say <text>, list, open <id|#n>, rename <title>, pin, archive, delete [id|#n], logout, exit"
)

// runREPL reads commands until EOF or exit/quit. The first word is the
// command, the rest of the line its argument. Handler errors are reported by
// the handlers themselves and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("chat %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "google":
			_ = a.Google(ctx)

		case "token":
			if arg == "" {
				printlnFn("Usage: token <jwt>")
				continue
			}
			_ = a.Token(ctx, arg)

		case "logout":
			_ = a.Logout(ctx)

		case "new":
			_ = a.NewChat(ctx)

		case "open":
			if arg == "" {
				printlnFn("Usage: open <id|#n>")
				continue
			}
			_ = a.Open(ctx, arg)

		case "l", "list":
			_ = a.List(ctx)

		case "say":
			if arg == "" {
				printlnFn("Usage: say <text>")
				continue
			}
			_ = a.Say(ctx, arg)

		case "rename":
			if arg == "" {
				printlnFn("Usage: rename <title>")
				continue
			}
			_ = a.Rename(ctx, arg)

		case "pin":
			_ = a.Pin(ctx)

		case "archive":
			_ = a.Archive(ctx)

		case "delete":
			_ = a.Delete(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
