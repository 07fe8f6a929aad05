/*
main.go - Application entry point

PURPOSE:
  Command-line front end of the leave engine: runs the HTTP server,
  migrates the schema, or loads a demo scenario.

COMMANDS:
  serve            Start the HTTP API (default when no command is given)
  migrate          Create or upgrade the schema and exit
  seed <scenario>  Reset the database and load a demo scenario

GLOBAL FLAGS (override the config file):
  --config     YAML config file (see config/config.go)
  --port       HTTP server port
  --db         Database DSN; a file path or ":memory:" for SQLite, a URL for
               PostgreSQL, unused by the memory driver
  --driver     sqlite3 | pgx | memory (memory keeps nothing across restarts)
  --log-level  debug | info | warn | error

STARTUP SEQUENCE (serve):
  1. Load config, apply flags, validate
  2. Build logger
  3. Open store (auto-migrates)
  4. Create API handler and router
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (server.shutdown_timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  leave-engine serve --db ./data/leave.db
  leave-engine serve --driver pgx --db postgres://leave@localhost/leave
  leave-engine seed team --db ./data/leave.db

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration file
  - store/sqlstore/store.go: Database implementation
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
