// Package bridge moves frames from a camera's acquisition callback to
// MQTT and keeps the device's settings in sync with what consumers
// ask for.
//
// The core is a two-slot handoff queue between the device's delivery
// context and a dedicated publishing goroutine. Pushing never blocks:
// when the publisher falls behind, new frames are dropped and counted
// rather than stalling acquisition. The consumer takes the newest
// frame first, so what goes out is always the freshest view, and a
// periodic status report turns the counters into in/out rates and a
// drop percentage.
//
// Around the queue sit three channels: a settings topic applying typed
// parameter batches with per-setting failure isolation, a control
// topic adjusting exposure and gain only on change, and presence
// tracking that gates image serialization on someone actually
// listening.
package bridge
