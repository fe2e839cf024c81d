package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// One raw JSON blob per device ID. Populate at build time (e.g. via code
// generation) or manually during development. Addresses are decimal because
// JSON has no hex literals: 118 = 0x76, 119 = 0x77.
// -----------------------------------------------------------------------------

const cfgRelay01 = `{
  "relay": {
    "mode": "sampler",
    "tick_ms": 10,
    "interval_ms": 1000,
    "line_max": 256,
    "heater_pin": 15,
    "command": "uart1"
  },
  "transport": {
    "kind": "directlink",
    "uart": "uart0",
    "device": "relay-01"
  },
  "sensor": {
    "bus": "i2c0",
    "addr": 118,
    "fallback_addr": 119,
    "retry_ms": 2000
  },
  "heartbeat": {
    "interval": 5
  }
}`

const cfgRelay02 = `{
  "relay": {
    "mode": "peer",
    "tick_ms": 10,
    "line_max": 256,
    "heater_pin": 15,
    "upstream": "uart1"
  },
  "transport": {
    "kind": "wirelessserial",
    "uart": "uart0",
    "debug": "uart1",
    "device": "relay-02"
  },
  "sensor": {
    "bus": "i2c0",
    "addr": 118,
    "fallback_addr": 119,
    "retry_ms": 2000
  },
  "heartbeat": {
    "interval": 5
  }
}`

const cfgRelay03 = `{
  "relay": {
    "mode": "sampler",
    "tick_ms": 10,
    "interval_ms": 5000,
    "line_max": 256,
    "heater_pin": 15
  },
  "transport": {
    "kind": "socketlink",
    "host": "192.168.4.1",
    "port": 9000,
    "reconnect_ms": 3000,
    "device": "relay-03"
  },
  "sensor": {
    "bus": "i2c0",
    "addr": 118,
    "fallback_addr": 119,
    "retry_ms": 2000
  },
  "heartbeat": {
    "interval": 5
  }
}`

var embeddedConfigs = map[string][]byte{
	"relay-01": []byte(cfgRelay01),
	"relay-02": []byte(cfgRelay02),
	"relay-03": []byte(cfgRelay03),
}
