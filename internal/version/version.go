package version

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/JustinTDCT/mediacat/internal/logging"
)

// Version is stamped at build time:
//
//	go build -ldflags "-X github.com/JustinTDCT/mediacat/internal/version.Version=1.4.0"
var Version = ""

const fallback = "0.0.0-dev"

type Info struct {
	Version string `json:"version"`
}

// Load prefers the build stamp, then a version.json beside the binary's
// working directory.
func Load() Info {
	if Version != "" {
		return Info{Version: Version}
	}
	return loadFile("version.json")
}

func loadFile(path string) Info {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("path", path).Msg("could not read version file")
		}
		return Info{Version: fallback}
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil || info.Version == "" {
		logging.Warn().Err(err).Str("path", path).Msg("could not parse version file")
		return Info{Version: fallback}
	}
	return info
}
