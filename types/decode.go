package types

// Section decoders for the map[string]any payloads the config service
// publishes. Numbers arrive as float64; absent or zero fields fall back to
// the package defaults.

func RelayConfigFromMap(m map[string]any) RelayConfig {
	c := RelayConfig{
		Mode:       mapStr(m, "mode", "sampler"),
		TickMs:     mapInt(m, "tick_ms", DefaultTickMs),
		IntervalMs: mapInt(m, "interval_ms", DefaultIntervalMs),
		LineMax:    mapInt(m, "line_max", DefaultLineMax),
		HeaterPin:  mapInt(m, "heater_pin", -1),
		Upstream:   mapStr(m, "upstream", ""),
		Command:    mapStr(m, "command", ""),
	}
	return c
}

func TransportConfigFromMap(m map[string]any) TransportConfig {
	return TransportConfig{
		Kind:        mapStr(m, "kind", "directlink"),
		UART:        mapStr(m, "uart", "uart0"),
		Debug:       mapStr(m, "debug", ""),
		Host:        mapStr(m, "host", ""),
		Port:        mapInt(m, "port", 0),
		ReconnectMs: mapInt(m, "reconnect_ms", DefaultReconnectMs),
		Device:      mapStr(m, "device", "relay"),
	}
}

func SensorConfigFromMap(m map[string]any) SensorConfig {
	return SensorConfig{
		Bus:          mapStr(m, "bus", "i2c0"),
		Addr:         mapInt(m, "addr", DefaultSensorAddr),
		FallbackAddr: mapInt(m, "fallback_addr", DefaultSensorAlt),
		RetryMs:      mapInt(m, "retry_ms", DefaultRetryMs),
	}
}

func HeartbeatConfigFromMap(m map[string]any) HeartbeatConfig {
	return HeartbeatConfig{
		IntervalS: mapInt(m, "interval", 5),
	}
}

func mapStr(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}

func mapInt(m map[string]any, key string, def int) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return def
}
