package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.trai.ch/corejs-upgrade/internal/app"
	"go.trai.ch/corejs-upgrade/internal/core/domain"
	"go.trai.ch/corejs-upgrade/internal/core/ports"
	"go.trai.ch/corejs-upgrade/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader  *mocks.MockConfigLoader
	bundler *mocks.MockBundler
	logger  *mocks.MockLogger
	watcher *fakeWatcher
	out     *bytes.Buffer
	dir     string
	app     *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		loader:  mocks.NewMockConfigLoader(ctrl),
		bundler: mocks.NewMockBundler(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
		watcher: newFakeWatcher(),
		out:     &bytes.Buffer{},
		dir:     t.TempDir(),
	}
	factory := func(ignore ...string) (ports.Watcher, error) {
		f.watcher.ignore = ignore
		return f.watcher, nil
	}
	f.app = app.New(f.loader, f.bundler, factory, f.logger).
		WithOutput(f.out).
		WithWorkDir(f.dir).
		WithDebounceWindow(time.Millisecond)
	return f
}

func (f *fixture) defaults() *domain.BuildOptions {
	return &domain.BuildOptions{
		WorkingDir:  f.dir,
		EntryPoints: []string{"src/index.js"},
	}
}

func ptr[T any](v T) *T { return &v }

func TestApp_Rewrite(t *testing.T) {
	f := newFixture(t)

	results, err := f.app.Rewrite([]string{
		"core-js/es6/promise",
		"core-js/es5",
		"lodash/map",
	})
	require.NoError(t, err)

	assert.Equal(t, []app.RewriteResult{
		{Request: "core-js/es6/promise", Result: "core-js/es/promise", Rule: "es6", Outcome: "rewritten"},
		{Request: "core-js/es5", Rule: "es5", Outcome: "unsupported"},
		{Request: "lodash/map", Result: "lodash/map", Outcome: "unmatched"},
	}, results)

	out := f.out.String()
	assert.Contains(t, out, "core-js/es6/promise → core-js/es/promise")
	assert.Contains(t, out, "core-js/es5 → unsupported")
	assert.Contains(t, out, "lodash/map unchanged")
}

func TestApp_Rewrite_JSON(t *testing.T) {
	f := newFixture(t)
	f.app.SetJSON(true)

	_, err := f.app.Rewrite([]string{"core-js/library/fn/promise"})
	require.NoError(t, err)

	var got []app.RewriteResult
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &got))
	assert.Equal(t, []app.RewriteResult{{
		Request: "core-js/library/fn/promise",
		Result:  "core-js-pure/features/promise",
		Rule:    "library/fn",
		Outcome: "rewritten",
	}}, got)
}

func TestApp_LoadOptions_Overrides(t *testing.T) {
	f := newFixture(t)
	vendor := filepath.Join(f.dir, "vendor")
	require.NoError(t, os.Mkdir(vendor, 0o750))

	loaded := f.defaults()
	loaded.Outdir = "dist"
	loaded.Format = domain.FormatESM
	f.loader.EXPECT().Load(f.dir, "custom.yaml").Return(loaded, nil)

	opts, err := f.app.LoadOptions(app.BuildOverrides{
		ConfigPath:  "custom.yaml",
		EntryPoints: []string{"lib/main.js"},
		Outdir:      ptr("build"),
		Format:      ptr("cjs"),
		Platform:    ptr("node"),
		Minify:      ptr(true),
		ResolveFrom: ptr("vendor"),
		External:    []string{"react"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"lib/main.js"}, opts.EntryPoints)
	assert.Equal(t, "build", opts.Outdir)
	assert.Equal(t, domain.FormatCJS, opts.Format)
	assert.Equal(t, domain.PlatformNode, opts.Platform)
	assert.True(t, opts.Minify)
	assert.False(t, opts.Sourcemap)
	assert.Equal(t, []string{"react"}, opts.External)
	assert.Equal(t, domain.ResolveFrom(vendor), opts.ResolveFrom)
}

func TestApp_LoadOptions_ResolveFromFalse(t *testing.T) {
	f := newFixture(t)
	loaded := f.defaults()
	loaded.ResolveFrom = domain.ResolveFrom(f.dir)
	f.loader.EXPECT().Load(f.dir, "").Return(loaded, nil)

	opts, err := f.app.LoadOptions(app.BuildOverrides{ResolveFrom: ptr("false")})
	require.NoError(t, err)
	assert.False(t, opts.ResolveFrom.Enabled())
}

func TestApp_LoadOptions_Errors(t *testing.T) {
	tests := []struct {
		name      string
		overrides app.BuildOverrides
		loadErr   error
		wantErr   error
	}{
		{
			name:    "config load fails",
			loadErr: domain.ErrConfigParseFailed,
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:      "missing resolve-from dir",
			overrides: app.BuildOverrides{ResolveFrom: ptr("missing")},
			wantErr:   domain.ErrResolveFromNotDir,
		},
		{
			name:      "invalid format",
			overrides: app.BuildOverrides{Format: ptr("amd")},
			wantErr:   domain.ErrInvalidFormat,
		},
		{
			name:      "outdir and outfile",
			overrides: app.BuildOverrides{Outdir: ptr("dist"), Outfile: ptr("out.js")},
			wantErr:   domain.ErrOutputConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.loadErr != nil {
				f.loader.EXPECT().Load(f.dir, "").Return(nil, tt.loadErr)
			} else {
				f.loader.EXPECT().Load(f.dir, "").Return(f.defaults(), nil)
			}

			_, err := f.app.LoadOptions(tt.overrides)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestApp_Scan(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.dir, "").Return(f.defaults(), nil)

	importer := filepath.Join(f.dir, "node_modules", "legacy", "index.js")
	imports := []domain.LegacyImport{
		{Request: "core-js/es5", Importer: importer, Rule: "es5"},
		{Request: "core-js/es6/map", Importer: importer, Rule: "es6", Rewritten: "core-js/es/map", Supported: true},
	}
	f.bundler.EXPECT().Scan(gomock.Any(), *f.defaults()).Return(imports, nil)

	got, err := f.app.Scan(context.Background(), app.BuildOverrides{})
	require.NoError(t, err)
	assert.Equal(t, imports, got)

	out := f.out.String()
	assert.Contains(t, out, "node_modules/legacy/index.js")
	assert.Contains(t, out, "core-js/es6/map → core-js/es/map")
	assert.Contains(t, out, "2 legacy imports, 1 unsupported")
}

func TestApp_Scan_Nothing(t *testing.T) {
	f := newFixture(t)
	f.app.SetJSON(true)
	f.loader.EXPECT().Load(f.dir, "").Return(f.defaults(), nil)
	f.bundler.EXPECT().Scan(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := f.app.Scan(context.Background(), app.BuildOverrides{})
	require.NoError(t, err)
	assert.JSONEq(t, "[]", f.out.String())
}

func TestApp_Build(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.dir, "").Return(f.defaults(), nil)
	f.bundler.EXPECT().Build(gomock.Any(), *f.defaults()).Return(&ports.BuildReport{
		OutputFiles: []string{filepath.Join(f.dir, "dist", "index.js")},
		Upgraded: []domain.LegacyImport{{
			Request:   "core-js/modules/es6.promise",
			Importer:  filepath.Join(f.dir, "node_modules", "legacy", "index.js"),
			Rule:      "modules/es6",
			Rewritten: "core-js/modules/es.promise",
			Supported: true,
		}},
		Warnings: []string{"something odd"},
	}, nil)
	f.logger.EXPECT().Warn("something odd")

	require.NoError(t, f.app.Build(context.Background(), app.BuildOverrides{}, false))

	out := f.out.String()
	assert.Contains(t, out, "core-js/modules/es6.promise → core-js/modules/es.promise")
	assert.Contains(t, out, "wrote dist/index.js")
}

func TestApp_Build_Fails(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.dir, "").Return(f.defaults(), nil)
	f.bundler.EXPECT().Build(gomock.Any(), gomock.Any()).Return(nil, domain.ErrBuildFailed)

	err := f.app.Build(context.Background(), app.BuildOverrides{}, false)
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.Empty(t, f.out.String())
}

func TestApp_Build_Watch(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(f.dir, "").Return(f.defaults(), nil)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Error(gomock.Any()).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan []string, 1)
	f.bundler.EXPECT().Watch(gomock.Any(), *f.defaults(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.BuildOptions, changes <-chan []string, onBuild func(*ports.BuildReport, error)) error {
			onBuild(&ports.BuildReport{OutputFiles: []string{filepath.Join(f.dir, "dist", "index.js")}}, nil)
			select {
			case paths := <-changes:
				onBuild(nil, domain.ErrBuildFailed)
				batches <- paths
			case <-ctx.Done():
			}
			<-ctx.Done()
			return nil
		})

	done := make(chan error, 1)
	go func() {
		done <- f.app.Build(ctx, app.BuildOverrides{}, true)
	}()

	<-f.watcher.started
	changed := filepath.Join(f.dir, "src", "index.js")
	f.watcher.emit(ports.WatchEvent{Path: changed, Operation: ports.OpWrite})
	f.watcher.emit(ports.WatchEvent{Path: changed, Operation: ports.OpWrite})

	select {
	case paths := <-batches:
		assert.Equal(t, []string{changed}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild triggered")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	assert.Equal(t, []string{filepath.Join(f.dir, "dist")}, f.watcher.ignore)
	assert.Equal(t, f.dir, f.watcher.root)
	assert.Contains(t, f.out.String(), "wrote dist/index.js")
}

func TestApp_SetVerbose(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	f := newFixture(t)
	require.NoError(t, f.app.Close(context.Background()))

	f.app.SetVerbose(false)
	assert.Same(t, prev, otel.GetTracerProvider())

	f.app.SetVerbose(true)
	installed := otel.GetTracerProvider()
	assert.NotSame(t, prev, installed)

	f.app.SetVerbose(true)
	assert.Same(t, installed, otel.GetTracerProvider())

	require.NoError(t, f.app.Close(context.Background()))
	require.NoError(t, f.app.Close(context.Background()))
}

// fakeWatcher delivers events pushed by the test.
type fakeWatcher struct {
	ignore  []string
	root    string
	events  chan ports.WatchEvent
	started chan struct{}
	once    sync.Once
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		events:  make(chan ports.WatchEvent, 8),
		started: make(chan struct{}),
	}
}

func (w *fakeWatcher) Start(_ context.Context, root string) error {
	w.root = root
	close(w.started)
	return nil
}

func (w *fakeWatcher) Stop() error {
	w.once.Do(func() { close(w.events) })
	return nil
}

func (w *fakeWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for ev := range w.events {
			if !yield(ev) {
				return
			}
		}
	}
}

func (w *fakeWatcher) emit(ev ports.WatchEvent) {
	w.events <- ev
}
