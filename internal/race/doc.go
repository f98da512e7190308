// Package race implements the concurrent acquisition-race engine: the
// shared per-cycle State that arbitrates at-most-one winner, the Worker
// loop that allocates, tests, claims and verifies candidates, and the
// Scheduler that bounds races to work windows and paces retries across
// pause windows.
//
// The engine never talks to the cloud directly. Workers reach the
// allocator through the narrow Allocator interface, and obtain a live
// Allocator each iteration from a SessionSource, so an expiring session
// heals within one iteration. All shared state lives in State, which is
// created fresh for every cycle and injected into each worker at spawn
// time; nothing is ambient or reused across cycles.
package race
