// Package rewriter maps core-js 2 import requests to their core-js 3 equivalents.
//
// Requests are split on "/" around the last "core-js" segment. Everything
// before that segment is the prefix and is copied verbatim into the result,
// so relative requests such as "../foo/core-js/es6/promise" keep pointing
// at the same package directory.
package rewriter

import "strings"

const (
	// LibraryRoot is the package name of core-js.
	LibraryRoot = "core-js"
	// PureRoot is the package name of the global-namespace-free core-js build.
	PureRoot = "core-js-pure"
)

// Outcome is the result class of a rewrite.
type Outcome uint8

const (
	// NoMatch means no rule recognized the request.
	NoMatch Outcome = iota
	// Rewritten means a rule translated the request.
	Rewritten
	// Unsupported means a rule recognized the request but core-js 3 has no equivalent.
	Unsupported
)

// String returns the name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Rewritten:
		return "rewritten"
	case Unsupported:
		return "unsupported"
	default:
		return "unmatched"
	}
}

// Match describes how a request was classified.
type Match struct {
	// Rule is the name of the rule that fired, empty for NoMatch.
	Rule string
	// Outcome is the result class.
	Outcome Outcome
	// Path is the rewritten request for Rewritten, the input for NoMatch
	// and empty for Unsupported.
	Path string
}

// Rule is one entry of the rewrite table.
type Rule struct {
	// Name identifies the rule in reports.
	Name  string
	apply func(r request) (string, Outcome)
}

// Apply evaluates this rule alone against s.
func (r Rule) Apply(s string) Match {
	req, ok := split(s)
	if !ok {
		return Match{Outcome: NoMatch, Path: s}
	}
	return r.match(req, s)
}

func (r Rule) match(req request, original string) Match {
	p, outcome := r.apply(req)
	switch outcome {
	case Rewritten:
		return Match{Rule: r.Name, Outcome: Rewritten, Path: p}
	case Unsupported:
		return Match{Rule: r.Name, Outcome: Unsupported}
	default:
		return Match{Outcome: NoMatch, Path: original}
	}
}

// rules is ordered by priority; the first rule that does not return NoMatch wins.
var rules = []Rule{
	{Name: "modules/es6", apply: moduleRule("es6.", "es.")},
	{Name: "modules/es7", apply: moduleRule("es7.", "esnext.")},
	{Name: "library/fn", apply: libraryFn},
	{Name: "es5", apply: unsupportedNamespace("es5")},
	{Name: "es6", apply: es6Namespace},
	{Name: "es7", apply: unsupportedNamespace("es7")},
	{Name: "object", apply: objectNamespace},
}

// Rules returns the rewrite table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Rewrite maps a legacy core-js request to its current path.
//
// It returns ok == false when the request is a recognized legacy form that
// has no current equivalent. A request no rule recognizes is returned
// unchanged with ok == true.
func Rewrite(s string) (string, bool) {
	m := Classify(s)
	if m.Outcome == Unsupported {
		return "", false
	}
	return m.Path, true
}

// Classify runs the rewrite table against s and reports which rule fired.
func Classify(s string) Match {
	req, ok := split(s)
	if !ok {
		return Match{Outcome: NoMatch, Path: s}
	}
	for _, r := range rules {
		if m := r.match(req, s); m.Outcome != NoMatch {
			return m
		}
	}
	return Match{Outcome: NoMatch, Path: s}
}

// request is an import request split around the core-js root segment.
type request struct {
	// prefix is everything before the root segment, including the trailing slash.
	prefix string
	// rest holds the segments after the root segment.
	rest []string
}

// split locates the last "core-js" segment that is followed by another segment.
func split(s string) (request, bool) {
	parts := strings.Split(s, "/")
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] != LibraryRoot {
			continue
		}
		var prefix string
		if i > 0 {
			prefix = strings.Join(parts[:i], "/") + "/"
		}
		return request{prefix: prefix, rest: parts[i+1:]}, true
	}
	return request{}, false
}

func (r request) tail(from int) string {
	return strings.Join(r.rest[from:], "/")
}

func (r request) build(root, p string) string {
	return r.prefix + root + "/" + p
}

// moduleRule handles "core-js/modules/<from><name>".
func moduleRule(from, to string) func(request) (string, Outcome) {
	return func(r request) (string, Outcome) {
		if len(r.rest) < 2 || r.rest[0] != "modules" {
			return "", NoMatch
		}
		name, ok := strings.CutPrefix(r.tail(1), from)
		if !ok || name == "" {
			return "", NoMatch
		}
		return r.build(LibraryRoot, "modules/"+to+name), Rewritten
	}
}

// libraryFn handles "core-js/library/fn/<path>", which moved to the pure package.
func libraryFn(r request) (string, Outcome) {
	if len(r.rest) < 3 || r.rest[0] != "library" || r.rest[1] != "fn" {
		return "", NoMatch
	}
	return r.build(PureRoot, "features/"+r.tail(2)), Rewritten
}

func unsupportedNamespace(ns string) func(request) (string, Outcome) {
	return func(r request) (string, Outcome) {
		if !strings.HasPrefix(r.rest[0], ns) {
			return "", NoMatch
		}
		return "", Unsupported
	}
}

// es6Namespace handles "core-js/es6<path>". The namespace entry points are
// modules in core-js 3, so a trailing ".js" is dropped.
func es6Namespace(r request) (string, Outcome) {
	rest, ok := strings.CutPrefix(r.tail(0), "es6")
	if !ok {
		return "", NoMatch
	}
	rest = strings.TrimSuffix(rest, ".js")
	return r.build(LibraryRoot, "es"+rest), Rewritten
}

// objectNamespace handles "core-js/object/<path>".
func objectNamespace(r request) (string, Outcome) {
	if len(r.rest) < 2 || r.rest[0] != "object" {
		return "", NoMatch
	}
	return r.build(LibraryRoot, "features/"+r.tail(0)), Rewritten
}
