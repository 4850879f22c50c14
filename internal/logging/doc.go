// Package logging turns a declarative logging section into a routed,
// buffered zap dispatcher.
//
// # Overview
//
// The configuration declares:
//   - named loggers, each binding a target to a minimum level, plus one
//     default logger (empty target) that catches every other target
//   - file appenders: rotating files, each with its own write level and
//     the logger names it subscribes to
//   - at most one console appender writing to standard output
//
// Every enabled appender is compiled into a Route. One event may be
// written by zero, one or many sinks, each deciding independently.
//
// # Usage
//
//	cfg, err := logging.Load(src) // src is a *config.Config
//	if err != nil {
//	    log.Fatal(err)
//	}
//	guard, err := logging.Initialize(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer guard.Close()
//
//	logging.L().Named("storage").Warn("slow fsync", zap.Duration("took", d))
//
// The target of an event is the zap logger name. Targets match exactly.
//
// # Configuration
//
//	logging:
//	  all_logger:
//	    default_name: root
//	    default_level: info
//	    loggers:
//	      - {name: db, target: storage, level: warn}
//	  file_appenders:
//	    - enable: true
//	      file_dir: ./logs
//	      file_name: app.log
//	      file_max_size: 10485760
//	      file_max_count: 5
//	      logger_names: [root, db]
//	  console_appender:
//	    write_level: warn
//	    logger_names: [db]
//
// # Sinks and the Guard
//
// Each sink owns a bounded queue drained by one worker goroutine; callers
// only encode and enqueue. When the queue is full the caller blocks
// (overflow: block, the default) or the record is dropped and counted
// (overflow: drop).
//
// Initialize returns a Guard owning all sinks. Closing it puts the
// previous zap globals back, then flushes every queue and joins every
// worker. Initialize succeeds once per process.
//
// # Rotation
//
// A file rotates when the next record would exceed file_max_size bytes or
// when the local day changes. file_max_count rotated files are kept.
package logging
