package distif

import "github.com/sarchlab/distfluid/internal/transport"

// directConnection delivers every sent message immediately, with no
// latency, standing in for transport.LatencyConnection in tests that care
// about the distributed-interface control law, not the transport's
// timing behavior.
type directConnection struct {
	ports map[transport.RemotePort]*transport.Port
}

func newDirectConnection() *directConnection {
	return &directConnection{ports: make(map[transport.RemotePort]*transport.Port)}
}

func (c *directConnection) PlugIn(port *transport.Port) {
	c.ports[port.AsRemote()] = port
	port.SetConnection(c)
}

func (c *directConnection) NotifySend() {
	for _, port := range c.ports {
		for {
			msg := port.RetrieveOutgoing()
			if msg == nil {
				break
			}

			dst, found := c.ports[msg.Meta().Dst]
			if !found {
				continue
			}

			dst.Deliver(msg)
		}
	}
}
