package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string   base URL of the backend server
//	-i int      online check interval in seconds
//	-f string   path of the local cache database
//
// os.Args is filtered through flagx.FilterArgs first, so flags registered
// by other packages do not trip the parse.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.CacheFile, "f", cfg.CacheFile, "path of the local cache database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
