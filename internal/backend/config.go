package backend

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"homebudget/internal/config"
)

// ErrInvalidConfig is wrapped by every configuration error of this package.
var ErrInvalidConfig = errors.New("invalid backend config")

// Types lists the supported backends.
func Types() []BackendType {
	return []BackendType{MemoryBackend, FileBackend, SQLiteBackend}
}

// FromAppConfig selects the backend named by DATA_BACKEND and checks that
// its location is set.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, fmt.Errorf("%w: no application config", ErrInvalidConfig)
	}
	cfg := Config{
		Type:          BackendType(strings.ToLower(strings.TrimSpace(app.DataBackend))),
		DataDirectory: app.DataDir,
		SQLiteDBPath:  app.SQLiteDBPath,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Type {
	case MemoryBackend:
		return nil
	case FileBackend:
		if c.DataDirectory == "" {
			return fmt.Errorf("%w: file backend needs DATA_DIR", ErrInvalidConfig)
		}
		return nil
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("%w: sqlite backend needs SQLITE_DB_PATH", ErrInvalidConfig)
		}
		return nil
	}

	names := make([]string, 0, len(Types()))
	for _, t := range Types() {
		names = append(names, t.String())
	}
	return fmt.Errorf("%w: unknown backend %q, want one of %s", ErrInvalidConfig, c.Type, strings.Join(names, ", "))
}

func (bt BackendType) IsValid() bool {
	return slices.Contains(Types(), bt)
}
