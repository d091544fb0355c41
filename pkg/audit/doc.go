// Package audit records every decision the engine hands out, asynchronously,
// so request latency never waits on audit persistence.
//
// A Recorder accepts records on a bounded channel and a background worker
// drains them into a Storage backend. When the channel is full the record is
// dropped with an error rather than blocking the caller. SQLiteStorage
// persists records durably; MemoryStorage backs tests.
package audit
