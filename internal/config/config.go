package config

import (
	"fmt"
	"os"

	"github.com/keshon/blockfs/internal/fs"
	"github.com/keshon/blockfs/internal/util"
)

// IsDev enables developer diagnostics such as printing parsed arguments.
var IsDev = os.Getenv("BLOCKFS_DEV") != ""

const (
	// DefaultOutput is where the image goes when no output path is given.
	DefaultOutput = "./files/fs.img"

	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = ".blockfs.json"

	// ChecksumExt is appended to the image path for the xxh3 sidecar.
	ChecksumExt = ".xxh3"
)

// DefaultIgnoredFiles are host metadata files never copied into an image.
var DefaultIgnoredFiles = []string{".DS_Store"}

// Config holds build settings read from a JSON config file.
type Config struct {
	Output   string   `json:"output"`
	Ignore   []string `json:"ignore"`
	Checksum bool     `json:"checksum"`
	Debug    bool     `json:"debug"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		Output: DefaultOutput,
		Ignore: append([]string(nil), DefaultIgnoredFiles...),
	}
}

// Load reads path on fsys and merges it over Default. A missing file is not
// an error; malformed JSON is.
func Load(fsys fs.FS, path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var fileCfg Config
	if err := util.ReadJSON(fsys, path, &fileCfg); err != nil {
		if fsys.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}

	if fileCfg.Output != "" {
		cfg.Output = fileCfg.Output
	}
	cfg.Ignore = append(cfg.Ignore, fileCfg.Ignore...)
	cfg.Checksum = fileCfg.Checksum
	cfg.Debug = fileCfg.Debug
	return cfg, nil
}

// ChecksumPath returns the sidecar path for an image.
func ChecksumPath(imagePath string) string {
	return imagePath + ChecksumExt
}
