// Package sources holds event sources beyond the executor's Timer.
//
// Every source follows the same template: it owns an executor.Suspension,
// the waiting computation polls it, and a dedicated goroutine (or a
// precomputed deadline) completes it when the event happens.
package sources
