// Package sqlite provides a SQLite-backed checkpoint store.
//
// Checkpoints are stored in a single table (default "checkpoints") with the
// thread ID indexed for fast listing. The schema is created automatically on
// construction. SQLite gives durable, transactional storage without a
// separate server process, which makes it a good default for local
// applications that outgrow the file store.
//
//	store, err := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{
//		Path: "./checkpoints.db",
//	})
package sqlite
