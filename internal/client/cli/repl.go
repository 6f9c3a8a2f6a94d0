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
	List(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	Done(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Workspaces(ctx context.Context) error
	Use(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the task planner CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as arguments, and dispatches to methods on 'a'.
// Unknown commands are reported back to the user. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - list | l       — list visible todos
//	  - add [title]    — add a todo (prompts for the rest)
//	  - done <id>      — mark a todo as done
//	  - rm <id>        — delete a todo
//	  - show [id]      — show a single todo
//	  - workspaces     — list workspaces you belong to
//	  - use <id>       — pick the workspace new todos go to
//	  - sync           — refresh the local cache from the server
//	  - logout         — log out and wipe the local cache
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tp> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, done, rm, show, workspaces, use, sync, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.Add(ctx, args)

		case "done":
			_ = a.Done(ctx, args)

		case "rm":
			_ = a.Remove(ctx, args)

		case "show":
			_ = a.Show(ctx, args)

		case "workspaces":
			_ = a.Workspaces(ctx)

		case "use":
			_ = a.Use(ctx, args)

		case "sync":
			_ = a.Sync(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
