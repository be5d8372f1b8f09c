// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/corejs-upgrade/internal/adapters/bundler"
	_ "go.trai.ch/corejs-upgrade/internal/adapters/config"
	_ "go.trai.ch/corejs-upgrade/internal/adapters/logger"
	_ "go.trai.ch/corejs-upgrade/internal/adapters/noderesolve"
	_ "go.trai.ch/corejs-upgrade/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/corejs-upgrade/internal/app"
)
