// relay-monitor attaches to a relay's serial port, pretty-prints the JSON
// line stream and lets the operator drive the heater from a small console.
//
//	relay-monitor -port /dev/ttyACM0 -baud 115200
//	> on
//	> off
//	> raw HEATER_ON
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

type record struct {
	Type     string  `json:"type"`
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
	Pressure float64 `json:"pressure"`
	Heater   bool    `json:"heater"`
	TS       uint32  `json:"ts"`
	State    string  `json:"state"`
	Device   string  `json:"device"`
}

func main() {
	portName := flag.String("port", "/dev/ttyACM0", "serial port of the relay")
	baud := flag.Int("baud", 115200, "baud rate")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	port, err := serial.Open(*portName, &serial.Mode{BaudRate: *baud})
	if err != nil {
		log.Fatal().Err(err).Str("port", *portName).Msg("open serial port")
	}
	defer port.Close()
	log.Info().Str("port", *portName).Int("baud", *baud).Msg("connected")

	go readLoop(port, log)

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		args, err := shlex.Split(sc.Text())
		if err != nil {
			log.Warn().Err(err).Msg("bad input")
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "heater" && len(args) == 2 {
			args = args[1:]
		}
		switch args[0] {
		case "on":
			send(port, "HEATER_ON", log)
		case "off":
			send(port, "HEATER_OFF", log)
		case "raw":
			send(port, strings.Join(args[1:], " "), log)
		case "quit", "exit":
			return
		default:
			log.Info().Msg("commands: heater on | heater off | raw <line> | quit")
		}
	}
}

func send(port serial.Port, line string, log zerolog.Logger) {
	if _, err := port.Write([]byte(line + "\n")); err != nil {
		log.Error().Err(err).Msg("write")
	}
}

func readLoop(port serial.Port, log zerolog.Logger) {
	sc := bufio.NewScanner(port)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r record
		if err := json.Unmarshal(line, &r); err != nil {
			// Not every line is ours; boot chatter passes through verbatim.
			log.Info().Str("raw", string(line)).Msg("device")
			continue
		}
		switch r.Type {
		case "sensor":
			log.Info().
				Float64("temp", r.Temp).
				Float64("humidity", r.Humidity).
				Float64("pressure", r.Pressure).
				Bool("heater", r.Heater).
				Uint32("ts", r.TS).
				Msg("sensor")
		case "heater":
			log.Info().Str("state", r.State).Msg("heater")
		case "hello":
			log.Info().Str("device", r.Device).Msg("hello")
		default:
			log.Info().Str("raw", string(line)).Msg("device")
		}
	}
	if err := sc.Err(); err != nil {
		log.Error().Err(err).Msg("serial read")
	}
	log.Warn().Msg("serial stream closed")
	os.Exit(1)
}
