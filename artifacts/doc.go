// Package artifacts persists generated logic programs and engine transcripts.
//
// Files live in a flat, write-once directory keyed by generated filename.
// An optional SQLite catalog records which run, engine and verdict produced
// each file so they can be listed without scanning the directory.
package artifacts
