package config

import "go.trai.ch/corejs-upgrade/internal/core/domain"

// File represents the structure of the corejs-upgrade.yaml configuration file.
type File struct {
	Version     string             `yaml:"version"`
	ResolveFrom domain.ResolveFrom `yaml:"resolveFrom"`
	EntryPoints []string           `yaml:"entryPoints"`
	Outdir      string             `yaml:"outdir"`
	Outfile     string             `yaml:"outfile"`
	Format      string             `yaml:"format"`
	Platform    string             `yaml:"platform"`
	Target      string             `yaml:"target"`
	Minify      bool               `yaml:"minify"`
	Sourcemap   bool               `yaml:"sourcemap"`
	External    []string           `yaml:"external"`
}
