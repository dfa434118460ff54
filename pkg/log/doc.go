/*
Package log provides structured logging for notesd using zerolog.

It wraps zerolog to give every component a logger carrying a
"component" field, with a single global Init() call selecting level
and output format for the whole process.

# Usage

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

	ingestLog := log.WithComponent("ingest")
	ingestLog.Info().Uint32("tag", tag).Msg("note accepted")

# Log Levels

Debug is for development and troubleshooting. Info is the default
production level. Warn flags situations that may need attention.
Error marks failed operations. Fatal logs and calls os.Exit(1); use it
only for unrecoverable startup errors.

# Output

JSONOutput selects structured JSON (for log aggregation) over a
human-readable console format (for local development). Output defaults
to os.Stdout.
*/
package log
