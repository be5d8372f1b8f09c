package domain

// ImportKind describes the syntax an import request came from.
type ImportKind uint8

const (
	// KindUnknown is used when the origin of a request is not known.
	KindUnknown ImportKind = iota
	// KindImportStatement is an ES module import statement.
	KindImportStatement
	// KindRequireCall is a CommonJS require call.
	KindRequireCall
	// KindDynamicImport is a dynamic import expression.
	KindDynamicImport
	// KindEntryPoint is a build entry point.
	KindEntryPoint
)

// ResolveRequest is a single attempt to turn an import request into a file path.
type ResolveRequest struct {
	// Path is the module request as written in source, e.g. "core-js/es6/promise".
	Path string
	// Importer is the file containing the import, if known.
	Importer string
	// ResolveDir is the directory relative requests are resolved against.
	ResolveDir string
	// Kind is the syntax the request came from.
	Kind ImportKind
}

// WithPath returns a copy of the request targeting a different module path.
func (r ResolveRequest) WithPath(p string) ResolveRequest {
	r.Path = p
	return r
}

// Resolution is the outcome of a successful upgrade attempt.
type Resolution struct {
	// Path is the resolved file path. It is empty when the original request
	// resolved and the host should continue with its own resolution.
	Path string
	// Rewritten is the rewritten request that was resolved, if any.
	Rewritten string
	// Upgraded reports whether the request had to be rewritten to resolve.
	Upgraded bool
}

// LegacyImport is a legacy core-js request found while scanning a project.
type LegacyImport struct {
	// Request is the import request as written in source.
	Request string `json:"request"`
	// Importer is the file containing the import.
	Importer string `json:"importer"`
	// Rule is the name of the rewrite rule that matched.
	Rule string `json:"rule"`
	// Rewritten is the core-js 3 path, empty when the request is unsupported.
	Rewritten string `json:"rewritten,omitempty"`
	// Supported is false when no core-js 3 equivalent exists.
	Supported bool `json:"supported"`
}
