// Package logging configures the process-wide zerolog logger.
//
// Profiles pick defaults for the CLI (info, timestamps) and tests (debug,
// no timestamps); FLASHIO_LOG_* environment variables override them.
package logging
