package domain

import "go.trai.ch/zerr"

var (
	// ErrModuleNotFound is returned when a module request cannot be resolved.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrUnsupportedRequest is returned when a legacy core-js request has no current equivalent.
	ErrUnsupportedRequest = zerr.New("legacy core-js request has no core-js 3 equivalent")

	// ErrInvalidPackageJSON is returned when a package.json cannot be parsed during resolution.
	ErrInvalidPackageJSON = zerr.New("failed to parse package.json")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrUnsupportedConfigVersion is returned when the config file declares an unknown version.
	ErrUnsupportedConfigVersion = zerr.New("unsupported config version")

	// ErrInvalidResolveFrom is returned when resolveFrom is neither false nor a directory path.
	ErrInvalidResolveFrom = zerr.New("resolveFrom must be false or a directory path")

	// ErrResolveFromNotDir is returned when resolveFrom points to something other than a directory.
	ErrResolveFromNotDir = zerr.New("resolveFrom is not a directory")

	// ErrInvalidFormat is returned when the output format is not recognized.
	ErrInvalidFormat = zerr.New("invalid output format, expected one of: esm, cjs, iife")

	// ErrInvalidPlatform is returned when the target platform is not recognized.
	ErrInvalidPlatform = zerr.New("invalid platform, expected one of: browser, node, neutral")

	// ErrInvalidTarget is returned when the language target is not recognized.
	ErrInvalidTarget = zerr.New("invalid target, expected esnext or es5, es2015 ... es2022")

	// ErrNoEntryPoints is returned when a build or scan is requested without entry points.
	ErrNoEntryPoints = zerr.New("no entry points specified")

	// ErrEntryPointGlobFailed is returned when an entry point pattern cannot be expanded.
	ErrEntryPointGlobFailed = zerr.New("failed to expand entry point pattern")

	// ErrEntryPointNotFound is returned when an entry point pattern matches no files.
	ErrEntryPointNotFound = zerr.New("entry point not found")

	// ErrOutputConflict is returned when both outfile and outdir are configured.
	ErrOutputConflict = zerr.New("outfile and outdir are mutually exclusive")

	// ErrBuildFailed is returned when the bundler reports errors.
	ErrBuildFailed = zerr.New("build failed")

	// ErrScanFailed is returned when scanning entry points for legacy imports fails.
	ErrScanFailed = zerr.New("scan failed")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch for changes")
)
