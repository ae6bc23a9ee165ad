// Package review drives spaced-repetition review sessions over active
// mistake records. A session snapshots the due queue up front and walks it
// one record at a time; every rating is persisted before the session moves
// on, so an abandoned session loses nothing already rated.
package review
