// Package scheduler runs the daily deadline check: a pure read over every
// user's open tasks due inside a configured window, dispatched as one
// alert per user. The check never mutates task state, so a rerun after a
// crash or an overlapping run is harmless.
package scheduler
