// Package mqtt provides MQTT client connectivity for spinbridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Frame, metadata and status publishing
//   - Control and settings subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Presence-based subscriber counting per stream
//
// # Architecture
//
// spinbridge uses MQTT as the transport between the camera bridge and
// its consumers. The broker decouples the bridge from viewers,
// recorders and control panels:
//
//	Camera → spinbridge → MQTT Broker → consumers
//
// # Presence
//
// Brokers do not tell publishers who is subscribed, so consumers
// publish retained presence documents under
// spinbridge/{camera}/presence/{client}. The bridge uses these to skip
// building image payloads nobody will receive; lightweight metadata is
// cheap enough to gate only on its own stream's presence.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	presence, _ := client.TrackPresence("cam0")
//	if presence.HasSubscribers(mqtt.StreamImage) {
//	    client.Publish(mqtt.Topics{}.Image("cam0"), payload, 0, false)
//	}
package mqtt
