package distif

import (
	"github.com/sarchlab/distfluid/internal/ifdata"
	"github.com/sarchlab/distfluid/internal/transport"
)

// payloadMsg carries one tick's interface payload over a transport.Port
// pair.
type payloadMsg struct {
	meta    transport.MsgMeta
	payload *ifdata.Payload
}

func (m *payloadMsg) Meta() *transport.MsgMeta { return &m.meta }
