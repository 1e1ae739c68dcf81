//go:build !cgo_sqlite

package sqlite

// Driver used: modernc.org/sqlite (pure Go, no cgo toolchain required).
import _ "modernc.org/sqlite"

// DefaultDriver is the database/sql driver name registered by this build.
const DefaultDriver = "sqlite"
