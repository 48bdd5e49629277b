// Package dispatch turns due campaigns into individual deliveries.
//
// A tick selects, for every campaign whose window contains now, at most
// throttle_per_minute pending recipients in enrollment order. Each recipient
// is one isolated unit: compose, send, then commit the outcome together with
// its audit row. A failed recipient never stops its siblings, and rows that
// leave pending are never selected again.
package dispatch
