package bundler

var (
	IsRelative  = isRelative
	KindFromAPI = kindFromAPI
	KindToAPI   = kindToAPI
)
