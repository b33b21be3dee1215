// Package archive records finished games in SQLite so that results outlive
// the in-memory sessions that produced them.
package archive
