// Package logging provides a nil-safe, leveled logger used throughout the
// synchronization engine. Logging through a nil *Logger is always a no-op,
// so components can accept a logger without special-casing its absence.
package logging
