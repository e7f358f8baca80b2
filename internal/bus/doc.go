// Package bus implements publish/subscribe messaging over per-namespace
// bounded logs. Clients obtained from a Registry join channels, receive
// events through a per-subscription channel (ready, data, error, close) and
// publish with at-least-once durability. A subscription never sees its own
// client's messages and delivers records in strict position order.
//
// Consumers must drain a subscription's Events channel; the engine blocks on
// delivery rather than dropping data, and the channel is closed after the
// final close event.
package bus
