// Package mqtt connects the Gram Jyoti core to the site broker.
//
// Field gateways publish load commands on gramjyoti/command/...; SCADA and
// logging clients follow the retained gramjyoti/state/... topics. The core
// announces itself on gramjyoti/system/status and leaves a retained
// offline Last Will for when it drops off without closing.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllLoadCommands(), 1, handleCommand)
package mqtt
