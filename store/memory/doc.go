// Package memory provides an in-process checkpoint store.
//
// State is held in maps guarded by a read-write mutex, making the store safe
// for concurrent graph executions within a single process. Nothing is
// persisted: use the file, sqlite, postgres or redis backends when
// checkpoints must survive a restart.
package memory
