package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskplanner/internal/client/client"
	"github.com/dmitrijs2005/taskplanner/internal/client/models"
)

// parseID extracts the numeric todo ID from args[0]. On a missing or
// malformed argument it prints the usage line and reports false.
func parseID(args []string, usage string) (int64, bool) {
	if len(args) == 0 {
		fmt.Println(usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println(usage)
		return 0, false
	}
	return id, true
}

func formatTodoLine(t models.Todo) string {
	mark := " "
	if t.Done {
		mark = "x"
	}
	s := fmt.Sprintf("[%s] %d\t%s", mark, t.ID, t.Title)
	if t.DueDate != nil {
		s += fmt.Sprintf(" (due %s)", *t.DueDate)
	}
	return s
}

func describeVisibility(t *client.Todo) string {
	switch {
	case t.IsGlobalPublic:
		return "public"
	case t.IsPrivate:
		return "private"
	default:
		return "workspace"
	}
}

// List prints one line per visible todo. While the server is unreachable the
// listing comes from the local cache filled by the last sync.
func (a *App) List(ctx context.Context) error {
	todos, fromCache, err := a.todoService.List(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if fromCache {
		fmt.Println("Server unavailable, showing cached todos:")
	}
	if len(todos) == 0 {
		fmt.Println("No todos yet")
		return nil
	}
	for _, t := range todos {
		fmt.Println(formatTodoLine(t))
	}
	return nil
}

// Add creates a todo in the currently selected workspace. The title comes
// from the command arguments or, when absent, from an interactive prompt;
// description and due date are always prompted for and may be left empty.
func (a *App) Add(ctx context.Context, args []string) error {
	title := strings.Join(args, " ")
	if title == "" {
		var err error
		title, err = GetSimpleText(a.reader, "Enter title", os.Stdout)
		if err != nil {
			return err
		}
	}

	description, err := GetMultiline(a.reader, "Enter description (optional):", os.Stdout)
	if err != nil {
		return err
	}

	dueDate, err := GetSimpleText(a.reader, "Enter due date YYYY-MM-DD (optional)", os.Stdout)
	if err != nil {
		return err
	}

	var descPtr, duePtr *string
	if description != "" {
		descPtr = &description
	}
	if dueDate != "" {
		duePtr = &dueDate
	}

	todo, err := a.todoService.Add(ctx, title, descPtr, duePtr)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Added #%d %s\n", todo.ID, todo.Title)
	return nil
}

// Done marks the todo given by ID as completed.
func (a *App) Done(ctx context.Context, args []string) error {
	id, ok := parseID(args, "Usage: done <id>")
	if !ok {
		return nil
	}

	todo, err := a.todoService.SetDone(ctx, id, true)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Done: #%d %s\n", todo.ID, todo.Title)
	return nil
}

// Remove deletes the todo given by ID.
func (a *App) Remove(ctx context.Context, args []string) error {
	id, ok := parseID(args, "Usage: rm <id>")
	if !ok {
		return nil
	}

	todo, err := a.todoService.Delete(ctx, id)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Removed: #%d %s\n", todo.ID, todo.Title)
	return nil
}

// Show fetches and displays a single todo. The ID is taken from the command
// arguments or prompted for interactively.
func (a *App) Show(ctx context.Context, args []string) error {
	var raw string
	if len(args) > 0 {
		raw = args[0]
	} else {
		var err error
		raw, err = GetSimpleText(a.reader, "Enter todo id to show", os.Stdout)
		if err != nil {
			return err
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Println("Usage: show <id>")
		return nil
	}

	todo, err := a.todoService.Get(ctx, id)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	log.Println(todo.Title)
	log.Printf("Done: %t", todo.Done)
	if todo.Description != nil {
		log.Printf("Description: %s", *todo.Description)
	}
	if todo.DueDate != nil {
		log.Printf("Due: %s", *todo.DueDate)
	}
	log.Printf("Workspace: %d", todo.WorkspaceID)
	log.Printf("Visibility: %s", describeVisibility(todo))
	return nil
}

// Sync refreshes the local cache so list keeps working offline.
func (a *App) Sync(ctx context.Context) error {
	n, err := a.todoService.Sync(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Synced %d todos to the local cache\n", n)
	return nil
}
