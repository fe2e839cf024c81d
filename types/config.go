package types

// Device configuration, one section per "config/<name>" topic.

// RelayConfig configures the relay core and its scheduler.
type RelayConfig struct {
	Mode       string `json:"mode"`        // "sampler" (read sensor directly) or "peer" (relay upstream UART)
	TickMs     int    `json:"tick_ms"`     // scheduler pass period
	IntervalMs int    `json:"interval_ms"` // sampling period, sampler mode only
	LineMax    int    `json:"line_max"`    // line framer capacity
	HeaterPin  int    `json:"heater_pin"`  // actuator GPIO
	Upstream   string `json:"upstream,omitempty"` // UART id of the peer link, peer mode only
	Command    string `json:"command,omitempty"`  // UART id of a wired command source, if any
}

// TransportConfig selects and parameterises the downstream link.
type TransportConfig struct {
	Kind        string `json:"kind"` // "directlink" | "wirelessserial" | "socketlink"
	UART        string `json:"uart,omitempty"`       // direct/wireless link port id
	Debug       string `json:"debug,omitempty"`      // wireless: always-on mirror port id
	Host        string `json:"host,omitempty"`       // socket endpoint
	Port        int    `json:"port,omitempty"`       //
	ReconnectMs int    `json:"reconnect_ms,omitempty"` // socket retry interval
	Device      string `json:"device"`               // advertised name (hello message)
}

// SensorConfig locates the environmental sensor on its bus.
type SensorConfig struct {
	Bus          string `json:"bus"`           // i2c bus id
	Addr         int    `json:"addr"`          // primary address (0x76 on most modules)
	FallbackAddr int    `json:"fallback_addr"` // alternate (0x77, SDO pulled high)
	RetryMs      int    `json:"retry_ms"`      // init probe retry delay
}

// HeartbeatConfig configures the liveness service.
type HeartbeatConfig struct {
	IntervalS int `json:"interval"`
}

// Defaults applied where config sections are absent or zero.
const (
	DefaultTickMs      = 10
	DefaultIntervalMs  = 1000
	DefaultLineMax     = 256
	DefaultReconnectMs = 3000
	DefaultSensorAddr  = 0x76
	DefaultSensorAlt   = 0x77
	DefaultRetryMs     = 2000
)
