// Package history stores past policy decisions and serves the trailing
// approval statistics the risk scorer's compliance component reads.
//
// Two implementations are provided: SQLiteStore for durable single-node
// deployments and MemoryStore for tests and ephemeral runs. Both satisfy
// Store, which embeds the scorer-facing read side.
package history
