package cli

import (
	"context"
	"fmt"
	"log"
	"strconv"
)

// Workspaces lists the workspaces the user belongs to. The one new todos
// currently go to is marked with an asterisk.
func (a *App) Workspaces(ctx context.Context) error {
	list, err := a.todoService.Workspaces(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	selected, err := a.todoService.SelectedWorkspace(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	for _, w := range list {
		marker := " "
		if selected != nil && *selected == w.ID {
			marker = "*"
		}
		fmt.Printf("%s %d\t%s\t%s\n", marker, w.ID, w.Kind, w.Name)
	}
	return nil
}

// Use picks the workspace new todos go to. "use personal" resets the
// selection back to the personal workspace.
func (a *App) Use(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: use <id> | use personal")
		return nil
	}

	var id int64
	if args[0] != "personal" {
		var err error
		id, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Println("Usage: use <id> | use personal")
			return nil
		}
	}

	if err := a.todoService.SelectWorkspace(ctx, id); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if id == 0 {
		fmt.Println("New todos go to your personal workspace")
	} else {
		fmt.Printf("New todos go to workspace %d\n", id)
	}
	return nil
}
