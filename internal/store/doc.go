// Package store provides SQLite-backed state for the agq command line.
//
// Each agq invocation is a separate process, but a server session outlives
// it. The store remembers, per named session:
//   - Sessions: the session URL, its repository and whether it was closed
//   - Identifier counter: the last generator id issued, so a later process
//     continues at id<N+1> instead of reissuing ids the server already holds
//   - Generators: the parameters each id was registered with
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The counter only moves forward: SaveLastUniqueID never lowers it, so two
// agq processes racing on one session cannot roll it back. They can still
// both issue the same next id; run commands for one session sequentially.
package store
