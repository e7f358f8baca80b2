// Package id generates the client identifiers handed out by the bus
// registry. An identifier embeds its registration time followed by a
// per-process sequence, and the hex string sorts the same way the raw bytes
// do, so client directory rows keyed by id scan in registration order.
//
// Usage:
//
//	g := id.NewGenerator()
//	clientID := g.Next()
//	key := clientID.String()          // 32-char hex, used in directory keys
//	since := clientID.Time()          // when the client registered
package id
