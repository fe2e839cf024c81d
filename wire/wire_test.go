package wire

import "testing"

func TestAppendSensorLine_Exact(t *testing.T) {
	r := SensorReading{Temp: 24.4, Humidity: 43.9, Pressure: 1018.3, HeaterOn: false, TS: 42}
	want := `{"type":"sensor","temp":24.4,"humidity":43.9,"pressure":1018.3,"heater":false,"ts":42}`
	if got := string(SensorLine(r)); got != want {
		t.Errorf("sensor line\n got %s\nwant %s", got, want)
	}
}

func TestAppendSensorLine_HeaterOnAndReuse(t *testing.T) {
	r := SensorReading{Temp: -1.5, Humidity: 100, Pressure: 950.2, HeaterOn: true, TS: 0}
	want := `{"type":"sensor","temp":-1.5,"humidity":100.0,"pressure":950.2,"heater":true,"ts":0}`

	buf := make([]byte, 0, 96)
	buf = AppendSensorLine(buf, r)
	if string(buf) != want {
		t.Errorf("sensor line\n got %s\nwant %s", buf, want)
	}

	// The append form must be clean when the buffer is reused.
	buf = AppendSensorLine(buf[:0], r)
	if string(buf) != want {
		t.Errorf("reused buffer\n got %s\nwant %s", buf, want)
	}
}

func TestHeaterLine(t *testing.T) {
	if got := string(HeaterLine(true)); got != `{"type":"heater","state":"on"}` {
		t.Errorf("on line = %s", got)
	}
	if got := string(HeaterLine(false)); got != `{"type":"heater","state":"off"}` {
		t.Errorf("off line = %s", got)
	}
}

func TestHelloLine(t *testing.T) {
	if got := string(HelloLine("relay-01")); got != `{"type":"hello","device":"relay-01"}` {
		t.Errorf("hello line = %s", got)
	}
	if got := string(HelloLine(`a"b\c`)); got != `{"type":"hello","device":"a\"b\\c"}` {
		t.Errorf("escaped hello line = %s", got)
	}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{"HEATER_ON", CmdHeaterOn},
		{"HEATER_OFF", CmdHeaterOff},
		{" HEATER_ON ", CmdHeaterOn},  // surrounding whitespace trimmed
		{"\tHEATER_OFF\r", CmdHeaterOff},
		{"heater_on", CmdNone}, // case-sensitive
		{"HEATER_ON extra", CmdNone},
		{"HEATERON", CmdNone},
		{"", CmdNone},
		{"   ", CmdNone},
	}
	for _, c := range cases {
		if got := ParseCommand([]byte(c.in)); got != c.want {
			t.Errorf("ParseCommand(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
