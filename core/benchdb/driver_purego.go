//go:build !cgo_sqlite

package benchdb

import (
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const (
	driverName = "sqlite"
	driverType = "purego"
)
