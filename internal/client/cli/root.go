package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores a previously saved session, starts the connectivity watcher
// and hands control to the REPL. It blocks until the user exits.
func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to the task planner CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	a.restoreSession(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := a.authService.Ping(pingCtx); err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}
	cancel()

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, scanner)
}
