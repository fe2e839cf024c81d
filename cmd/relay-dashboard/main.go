// relay-dashboard bridges a relay's line stream to browser clients. The
// device side is either a serial port or a TCP connection to a socketlink
// relay; every device line fans out to all connected websockets, and any
// text a client sends goes back to the device as a command line.
//
//	relay-dashboard -port /dev/ttyACM0
//	relay-dashboard -tcp 192.168.4.20:9000 -listen :8080
package main

import (
	"bufio"
	"flag"
	"io"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	device  io.Writer
	log     zerolog.Logger
}

func newHub(device io.Writer, log zerolog.Logger) *hub {
	return &hub{clients: make(map[*websocket.Conn]bool), device: device, log: log}
}

func (h *hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info().Int("clients", n).Msg("websocket connected")
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.Close()
}

// broadcast fans one device line out to every client; a client that cannot
// keep up is dropped.
func (h *hub) broadcast(line []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, line); err != nil {
			delete(h.clients, c)
			c.Close()
		}
	}
}

// clientLoop relays websocket text frames to the device as command lines.
func (h *hub) clientLoop(c *websocket.Conn) {
	defer h.remove(c)
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}
		h.mu.Lock()
		_, werr := h.device.Write(append(msg, '\n'))
		h.mu.Unlock()
		if werr != nil {
			h.log.Error().Err(werr).Msg("device write")
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	// Bench tool on a trusted network.
	CheckOrigin: func(*http.Request) bool { return true },
}

func main() {
	portName := flag.String("port", "", "serial port of the relay")
	baud := flag.Int("baud", 115200, "serial baud rate")
	tcpAddr := flag.String("tcp", "", "socketlink relay address (host:port), instead of -port")
	listen := flag.String("listen", ":8080", "http listen address")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	device, err := openDevice(*portName, *baud, *tcpAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("open device")
	}
	defer device.Close()

	h := newHub(device, log)

	go func() {
		sc := bufio.NewScanner(device)
		for sc.Scan() {
			line := sc.Bytes()
			if len(line) == 0 {
				continue
			}
			log.Debug().Str("line", string(line)).Msg("device")
			h.broadcast(line)
		}
		log.Fatal().Err(sc.Err()).Msg("device stream closed")
	}()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, indexHTML)
	})
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("upgrade")
			return
		}
		h.add(c)
		go h.clientLoop(c)
	})

	log.Info().Str("listen", *listen).Msg("dashboard up")
	if err := http.ListenAndServe(*listen, nil); err != nil {
		log.Fatal().Err(err).Msg("http serve")
	}
}

func openDevice(portName string, baud int, tcpAddr string) (io.ReadWriteCloser, error) {
	if tcpAddr != "" {
		return net.Dial("tcp", tcpAddr)
	}
	return serial.Open(portName, &serial.Mode{BaudRate: baud})
}

const indexHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>relay dashboard</title></head>
<body>
<h1>relay dashboard</h1>
<button onclick="send('HEATER_ON')">heater on</button>
<button onclick="send('HEATER_OFF')">heater off</button>
<pre id="log"></pre>
<script>
const ws = new WebSocket('ws://' + location.host + '/ws');
const log = document.getElementById('log');
ws.onmessage = e => {
  log.textContent = e.data + '\n' + log.textContent;
  if (log.textContent.length > 20000) log.textContent = log.textContent.slice(0, 20000);
};
function send(cmd) { ws.send(cmd); }
</script>
</body>
</html>
`
