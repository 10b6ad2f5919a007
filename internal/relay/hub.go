package relay

import (
	"sync"

	"golang.org/x/net/websocket"

	"github.com/louisbranch/shellrelay/internal/protocol"
)

// hub tracks every connected status client.
//
// All clients of the origin share one audience: broadcasts walk a snapshot
// of the peer set taken under lock, and per-peer write failures are
// swallowed. Broadcasting is advisory and must never fail a fetch.
type hub struct {
	mu    sync.Mutex
	peers map[*peer]struct{}
}

func newHub() *hub {
	return &hub{peers: make(map[*peer]struct{})}
}

// peer is one connected status client.
type peer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (p *peer) send(msg protocol.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return websocket.JSON.Send(p.conn, msg)
}

func (h *hub) join(p *peer) {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) leave(p *peer) {
	h.mu.Lock()
	delete(h.peers, p)
	h.mu.Unlock()
}

// broadcast posts the status to every connected peer.
func (h *hub) broadcast(status protocol.Status) {
	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	msg := protocol.Message{Type: status.MessageType()}
	for _, p := range peers {
		_ = p.send(msg)
	}
}

// handler serves the status websocket endpoint.
//
// A status-request frame gets a direct point-to-point reply carrying the
// last broadcast status. Unknown frame types are ignored; a malformed frame
// is dropped without closing the connection.
func (h *hub) handler(last func() protocol.Status) websocket.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		p := &peer{conn: conn}
		h.join(p)
		defer func() {
			h.leave(p)
			_ = conn.Close()
		}()

		for {
			var raw []byte
			if err := websocket.Message.Receive(conn, &raw); err != nil {
				return
			}
			msg, err := protocol.ParseMessage(raw)
			if err != nil {
				continue
			}
			if msg.Type != protocol.TypeStatusRequest {
				continue
			}
			_ = p.send(protocol.Message{Type: last().MessageType()})
		}
	})
}
