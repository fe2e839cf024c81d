package sensor

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/bme280"

	"relaycode-go/errcode"
)

// NewBME280Factory adapts the TinyGo BME280 driver to the probe Factory.
// The I²C bus must already be configured.
func NewBME280Factory(bus drivers.I2C) Factory {
	return func(addr uint16) Chip {
		d := bme280.New(bus)
		d.Address = addr
		return &bmeChip{dev: d}
	}
}

type bmeChip struct {
	dev bme280.Device
}

func (c *bmeChip) Configure()      { c.dev.Configure() }
func (c *bmeChip) Connected() bool { return c.dev.Connected() }

func (c *bmeChip) Read() (Values, error) {
	t, err := c.dev.ReadTemperature()
	if err != nil {
		return Values{}, &errcode.E{C: errcode.SensorReadInvalid, Op: "temperature", Err: err}
	}
	h, err := c.dev.ReadHumidity()
	if err != nil {
		return Values{}, &errcode.E{C: errcode.SensorReadInvalid, Op: "humidity", Err: err}
	}
	p, err := c.dev.ReadPressure()
	if err != nil {
		return Values{}, &errcode.E{C: errcode.SensorReadInvalid, Op: "pressure", Err: err}
	}
	return convert(t, h, p), nil
}

// convert scales the driver's fixed-point readings to engineering units.
// The driver reports milli-°C, hundredths of %RH and milli-Pa.
func convert(milliC, centiRH, milliPa int32) Values {
	return Values{
		Temp:     float64(milliC) / 1000,
		Humidity: float64(centiRH) / 100,
		Pressure: float64(milliPa) / 100000, // milli-Pa -> hPa
	}
}
