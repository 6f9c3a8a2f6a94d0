package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/taskplanner/internal/flagx"
	"github.com/dmitrijs2005/taskplanner/internal/timex"
)

// JsonConfig is the shape of the optional JSON config file. Intervals use
// timex.Duration, so "3s" and integer nanoseconds both parse. Values are
// copied into the runtime Config after unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	CacheFile           string         `json:"cache_file"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. Without the flag nothing is loaded. A file that cannot be
// read or parsed panics, so a broken config never starts the client.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	cfg.CacheFile = jc.CacheFile
}
