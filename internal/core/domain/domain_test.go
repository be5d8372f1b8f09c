package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corejs-upgrade/internal/core/domain"
	"gopkg.in/yaml.v3"
)

func TestResolveFrom_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.ResolveFrom
		wantErr error
	}{
		{name: "false", input: "resolveFrom: false", want: ""},
		{name: "null", input: "resolveFrom: null", want: ""},
		{name: "missing", input: "{}", want: ""},
		{name: "directory", input: "resolveFrom: ./vendor", want: "./vendor"},
		{name: "quoted", input: `resolveFrom: "/opt/app"`, want: "/opt/app"},
		{name: "true is rejected", input: "resolveFrom: true", wantErr: domain.ErrInvalidResolveFrom},
		{name: "number is rejected", input: "resolveFrom: 3", wantErr: domain.ErrInvalidResolveFrom},
		{name: "list is rejected", input: "resolveFrom: [a]", wantErr: domain.ErrInvalidResolveFrom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts domain.Options
			err := yaml.Unmarshal([]byte(tt.input), &opts)
			if tt.wantErr != nil {
				require.ErrorContains(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.ResolveFrom)
		})
	}
}

func TestResolveFrom_String(t *testing.T) {
	assert.Equal(t, "false", domain.ResolveFrom("").String())
	assert.Equal(t, "/srv", domain.ResolveFrom("/srv").String())
	assert.False(t, domain.ResolveFrom("").Enabled())
	assert.True(t, domain.ResolveFrom("x").Enabled())
}

func TestOptions_Merge(t *testing.T) {
	defaults := domain.DefaultOptions()

	assert.Equal(t, defaults, defaults.Merge(domain.Options{}))
	assert.Equal(t, domain.ResolveFrom("/root"), defaults.Merge(domain.Options{ResolveFrom: "/root"}).ResolveFrom)

	base := domain.Options{ResolveFrom: "/a"}
	assert.Equal(t, domain.ResolveFrom("/a"), base.Merge(domain.Options{}).ResolveFrom)
	assert.Equal(t, domain.ResolveFrom("/b"), base.Merge(domain.Options{ResolveFrom: "/b"}).ResolveFrom)
}

func TestBuildOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    domain.BuildOptions
		wantErr error
	}{
		{
			name:    "no entry points",
			opts:    domain.BuildOptions{},
			wantErr: domain.ErrNoEntryPoints,
		},
		{
			name:    "outdir and outfile",
			opts:    domain.BuildOptions{EntryPoints: []string{"a.js"}, Outdir: "dist", Outfile: "out.js"},
			wantErr: domain.ErrOutputConflict,
		},
		{
			name:    "unknown format",
			opts:    domain.BuildOptions{EntryPoints: []string{"a.js"}, Format: "umd"},
			wantErr: domain.ErrInvalidFormat,
		},
		{
			name:    "unknown platform",
			opts:    domain.BuildOptions{EntryPoints: []string{"a.js"}, Platform: "deno"},
			wantErr: domain.ErrInvalidPlatform,
		},
		{
			name: "valid",
			opts: domain.BuildOptions{
				EntryPoints: []string{"src/**/*.js"},
				Outdir:      "dist",
				Format:      domain.FormatESM,
				Platform:    domain.PlatformBrowser,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr != nil {
				require.ErrorContains(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestResolveRequest_WithPath(t *testing.T) {
	req := domain.ResolveRequest{Path: "core-js/es6", ResolveDir: "/src", Kind: domain.KindRequireCall}
	next := req.WithPath("core-js/es")

	assert.Equal(t, "core-js/es6", req.Path)
	assert.Equal(t, "core-js/es", next.Path)
	assert.Equal(t, "/src", next.ResolveDir)
	assert.Equal(t, domain.KindRequireCall, next.Kind)
}
