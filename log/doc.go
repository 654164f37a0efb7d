// Package log provides a small leveled logging interface used across the
// graph engine and the prebuilt agents.
//
// Five levels are supported, in order of increasing severity: Debug, Info,
// Warn, Error and None (which disables output). Two implementations ship with
// the package: DefaultLogger on top of the standard library, and GologLogger
// wrapping github.com/kataras/golog for colored terminal output.
//
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//	logger.Info("run started on thread %s", threadID)
//
// A package-level logger is available for code that does not want to thread a
// Logger through its call graph:
//
//	log.SetLogLevel(log.LogLevelDebug)
//	log.Debug("frontier: %v", next)
package log
