// Package config provides the configuration loader for corejs-upgrade.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.trai.ch/corejs-upgrade/internal/core/domain"
	"go.trai.ch/corejs-upgrade/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration for cwd. An empty configPath means the
// default file name; a missing default file yields the defaults, while a
// missing explicitly named file is an error. Values from .env and the
// environment override the file.
func (l *Loader) Load(cwd, configPath string) (*domain.BuildOptions, error) {
	if err := loadDotEnv(cwd); err != nil {
		return nil, err
	}

	explicit := configPath != ""
	if !explicit {
		configPath = domain.ConfigFileName
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}

	var file File
	found, err := readAndUnmarshalYAML(configPath, &file)
	if err != nil {
		return nil, err
	}
	if !found && explicit {
		return nil, zerr.With(domain.ErrConfigReadFailed, "path", configPath)
	}
	if found && file.Version != "" && file.Version != domain.ConfigVersion {
		return nil, zerr.With(domain.ErrUnsupportedConfigVersion, "version", file.Version)
	}

	configDir := filepath.Dir(configPath)
	opts := &domain.BuildOptions{
		Options:     domain.DefaultOptions().Merge(domain.Options{ResolveFrom: file.ResolveFrom}),
		WorkingDir:  cwd,
		EntryPoints: file.EntryPoints,
		Outdir:      file.Outdir,
		Outfile:     file.Outfile,
		Format:      domain.Format(file.Format),
		Platform:    domain.Platform(file.Platform),
		Target:      file.Target,
		Minify:      file.Minify,
		Sourcemap:   file.Sourcemap,
		External:    file.External,
	}

	if env, ok := os.LookupEnv(domain.EnvResolveFrom); ok {
		opts.ResolveFrom = ParseResolveFrom(env)
		configDir = cwd
	}

	if opts.ResolveFrom.Enabled() {
		dir, err := ResolveDir(configDir, string(opts.ResolveFrom))
		if err != nil {
			return nil, err
		}
		opts.ResolveFrom = domain.ResolveFrom(dir)
	}

	if found {
		l.Logger.Info("loaded configuration from " + configPath)
	}

	return opts, nil
}

// ResolveDir makes dir absolute relative to base and checks that it is a directory.
func ResolveDir(base, dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrResolveFromNotDir.Error()), "resolve_from", dir)
	}
	if !info.IsDir() {
		return "", zerr.With(domain.ErrResolveFromNotDir, "resolve_from", dir)
	}
	return dir, nil
}

// ParseResolveFrom interprets a command line or environment value; empty and
// "false" disable rooted resolution.
func ParseResolveFrom(v string) domain.ResolveFrom {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "false") {
		return ""
	}
	return domain.ResolveFrom(v)
}

func loadDotEnv(cwd string) error {
	err := godotenv.Load(filepath.Join(cwd, domain.EnvFileName))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return zerr.Wrap(err, "failed to load "+domain.EnvFileName)
}

// readAndUnmarshalYAML reports found == false when the file does not exist.
func readAndUnmarshalYAML[T any](configPath string, target *T) (bool, error) {
	//nolint:gosec // Path is provided by the user on purpose
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}
	return true, nil
}
