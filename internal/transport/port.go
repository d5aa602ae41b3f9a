package transport

// Port is owned by one side of an interface link and plugs into a
// Connection. Grounded on the teacher's sim.Port, trimmed to what a
// single-port distributed-interface link needs.
type Port struct {
	name string
	conn Connection

	outgoing *Buffer
	incoming *Buffer
}

// NewPort creates a Port named name with the given buffer depths.
func NewPort(name string, outgoingCap, incomingCap int) *Port {
	return &Port{
		name:     name,
		outgoing: NewBuffer(name+".out", outgoingCap),
		incoming: NewBuffer(name+".in", incomingCap),
	}
}

// Name returns the port's name.
func (p *Port) Name() string { return p.name }

// AsRemote returns the name other ports should use as Dst when addressing
// this port.
func (p *Port) AsRemote() RemotePort { return RemotePort(p.name) }

// SetConnection plugs conn into the port. A port may only ever be plugged
// into one connection.
func (p *Port) SetConnection(conn Connection) {
	if p.conn != nil {
		panic("transport: port " + p.name + " already connected")
	}

	p.conn = conn
}

// Send enqueues msg for delivery over the port's connection. It returns
// false if the outgoing buffer is full. A port not yet plugged into a
// connection keeps the message in its outgoing buffer.
func (p *Port) Send(msg Msg) bool {
	if !p.outgoing.CanPush() {
		return false
	}

	p.outgoing.Push(msg)

	if p.conn != nil {
		p.conn.NotifySend()
	}

	return true
}

// RetrieveOutgoing is called by the connection to take the next message to
// deliver.
func (p *Port) RetrieveOutgoing() Msg {
	return p.outgoing.Pop()
}

// PeekOutgoing looks at the next outgoing message without removing it.
func (p *Port) PeekOutgoing() Msg {
	return p.outgoing.Peek()
}

// Deliver is called by the connection to hand an inbound message to this
// port.
func (p *Port) Deliver(msg Msg) bool {
	if !p.incoming.CanPush() {
		return false
	}

	p.incoming.Push(msg)

	return true
}

// RetrieveIncoming is called by the owning component to take the next
// inbound message, or nil if none has arrived.
func (p *Port) RetrieveIncoming() Msg {
	return p.incoming.Pop()
}

// PeekIncoming looks at the next inbound message without removing it.
func (p *Port) PeekIncoming() Msg {
	return p.incoming.Peek()
}
