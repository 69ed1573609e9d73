// Package mqtt provides MQTT client connectivity for the Gray Logic registry.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS guarantees and a payload size limit
//   - Topic subscriptions with wildcard support, restored on reconnect
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
// The MQTT storage facility keeps one retained message per parameter:
//
//	{prefix}/values/{namespace}/{schema}/{instance}/{item...}
//	{prefix}/status
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.Storage.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := client.Topics().Value("1/0/0/2")
//	err = client.PublishRetained(topic, payload)
package mqtt
