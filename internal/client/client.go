// Package client implements the status client side of the offline
// subsystem: it registers with the relay's status feed, asks for the current
// status once per session, listens for unsolicited broadcasts, and drives a
// banner.
package client

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/louisbranch/shellrelay/internal/client/copy"
	"github.com/louisbranch/shellrelay/internal/protocol"
)

// wsPath is the relay's well-known status feed path.
const wsPath = "/offline/ws"

// Config carries client construction parameters.
type Config struct {
	// RelayURL is the HTTP base URL of the relay.
	RelayURL string
	// Locale selects the banner copy; empty falls back to en-US.
	Locale string
	// Banner receives status transitions. A nil banner short-circuits
	// rendering silently.
	Banner Banner
}

// Client is one document-equivalent status session.
type Client struct {
	wsURL  string
	origin string
	banner Banner

	networkHeading string
	serverHeading  string
}

// New builds a status client for the given relay.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.RelayURL))
	if err != nil {
		return nil, fmt.Errorf("parse relay url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("relay url %q must be absolute", cfg.RelayURL)
	}

	wsBase := *base
	switch base.Scheme {
	case "https":
		wsBase.Scheme = "wss"
	default:
		wsBase.Scheme = "ws"
	}
	wsBase.Path = strings.TrimRight(wsBase.Path, "/") + wsPath

	printer := copy.Printer(cfg.Locale)
	return &Client{
		wsURL:          wsBase.String(),
		origin:         base.String(),
		banner:         cfg.Banner,
		networkHeading: printer.Sprintf(copy.KeyNetworkErrorHeading),
		serverHeading:  printer.Sprintf(copy.KeyServerErrorHeading),
	}, nil
}

// Run registers with the relay and processes status messages until the
// context ends or the connection closes.
//
// A failed registration is logged, not surfaced: the application degrades to
// plain online behavior, as if offline support were absent.
func (c *Client) Run(ctx context.Context) error {
	conn, err := websocket.Dial(c.wsURL, "", c.origin)
	if err != nil {
		log.Printf("client: register status feed: %v", err)
		return nil
	}

	var closeOnce sync.Once
	closeConn := func() {
		closeOnce.Do(func() {
			_ = conn.Close()
		})
	}
	defer closeConn()

	stop := context.AfterFunc(ctx, closeConn)
	defer stop()

	// Exactly one status query per session; broadcasts cover the rest.
	if err := websocket.JSON.Send(conn, protocol.Message{Type: protocol.TypeStatusRequest}); err != nil {
		log.Printf("client: request status: %v", err)
		return nil
	}

	for {
		var raw []byte
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			// Connection closed, by the relay or by ctx cancellation.
			return nil
		}
		msg, err := protocol.ParseMessage(raw)
		if err != nil {
			// Malformed frame. The session outlives it.
			continue
		}
		c.apply(msg)
	}
}

// apply renders one status message. Unknown types are ignored.
func (c *Client) apply(msg protocol.Message) {
	status, ok := protocol.StatusFromType(msg.Type)
	if !ok {
		return
	}
	if c.banner == nil {
		return
	}

	switch status {
	case protocol.StatusNetworkError:
		c.banner.SetContent(c.networkHeading, false)
		c.banner.Show()
	case protocol.StatusServerError:
		c.banner.SetContent(c.serverHeading, true)
		c.banner.Show()
	case protocol.StatusOnline:
		c.banner.Hide()
	}
}
