//go:build cgo_sqlite

package sqlite

// Driver used: github.com/mattn/go-sqlite3 (requires CGO_ENABLED=1).
import _ "github.com/mattn/go-sqlite3"

// DefaultDriver is the database/sql driver name registered by this build.
const DefaultDriver = "sqlite3"
