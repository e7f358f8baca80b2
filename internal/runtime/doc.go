// Package runtime wires storage and config into a single-node vubsub
// instance. It exposes Open/Close, a basic health check, and the shared
// per-namespace log cache used by the bus.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	log, _ := rt.EnsureLog("default")
//	_, _ = log.Append(context.Background(), []eventlog.AppendRecord{{Payload: []byte("hello")}})
package runtime
