package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"influencerdash/pkg/contracts/domain"
)

// Paths contains all the application paths.
// This is the single source of truth for file locations.
type Paths struct {
	BaseDir string
	DataDir string
	LogsDir string
}

// GetPaths resolves the configured directories against the base directory.
// An empty base directory means the current working directory.
func (c *Config) GetPaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &Paths{
		BaseDir: base,
		DataDir: resolve(base, c.Paths.DataDir, DefaultDataDir),
		LogsDir: resolve(base, c.Paths.LogsDir, DefaultLogsDir),
	}, nil
}

func resolve(base, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Default().Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetDatasetPath returns the path of the CSV file backing an entity
func (p *Paths) GetDatasetPath(e domain.Entity) string {
	return filepath.Join(p.DataDir, e.FileName())
}

// DatasetFiles returns the four dataset paths keyed by entity
func (p *Paths) DatasetFiles() map[domain.Entity]string {
	files := make(map[domain.Entity]string, len(domain.Entities))
	for _, e := range domain.Entities {
		files[e] = p.GetDatasetPath(e)
	}
	return files
}

// GetLogPath returns a path inside the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// MissingDatasetFiles lists dataset files that do not exist yet
func (p *Paths) MissingDatasetFiles() []string {
	var missing []string
	for _, e := range domain.Entities {
		if path := p.GetDatasetPath(e); !FileExists(path) {
			missing = append(missing, path)
		}
	}
	return missing
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("logs", p.LogsDir),
		))
}
