package discovery

import (
	"github.com/PizzaHomicide/mediabind/internal/disposal"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/safe"
)

// Role is what an announcing node offers to its ancestors.
type Role string

const (
	// RoleProvider is a playback engine.  The payload is the provider itself.
	RoleProvider Role = "provider"
	// RoleContainer is the element a player is presented in, which may be able to go fullscreen.
	RoleContainer Role = "container"
)

// EventType returns the event type that carries discovery signals for role.
func EventType(role Role) string {
	return "discover:" + string(role)
}

// Signal is the detail of a discovery event: one connection of an announcing node.
type Signal struct {
	Role    Role
	Node    *Node
	Payload any

	bin   *disposal.Bin
	ended bool
}

// OnDisconnect registers cb to run when this connection ends.  If it has already ended cb runs straight away.
func (s *Signal) OnDisconnect(cb func()) {
	if s.ended {
		if err := safe.Call(cb); err != nil {
			log.ReportError("discovery:"+s.Node.name, err)
		}
		return
	}
	s.bin.Add(cb)
}

// Active reports whether the connection this signal describes is still live.
func (s *Signal) Active() bool {
	return !s.ended
}

func (s *Signal) end() {
	if s.ended {
		return
	}
	s.ended = true
	s.bin.Empty()
}

type announcement struct {
	node      *Node
	role      Role
	payload   any
	current   *Signal
	withdrawn bool
}

func (a *announcement) signal() {
	a.end()
	sig := &Signal{
		Role:    a.role,
		Node:    a.node,
		Payload: a.payload,
		bin:     disposal.NewBin("discovery:"+a.node.name, nil),
	}
	a.current = sig

	claimed := a.node.Dispatch(&Event{Type: EventType(a.role), Detail: sig, Target: a.node})
	if !claimed {
		log.Debug("Discovery signal was not claimed", "role", a.role, "node", a.node.Path())
	}
}

func (a *announcement) end() {
	if a.current != nil {
		a.current.end()
		a.current = nil
	}
}

// Announce registers role on n.  Each time n connects, including now if it already is, a discovery signal carrying
// payload bubbles up from n.  The returned function withdraws the announcement and ends the current connection.
func (n *Node) Announce(role Role, payload any) (withdraw func()) {
	a := &announcement{node: n, role: role, payload: payload}
	n.roles = append(n.roles, a)
	if n.connected {
		a.signal()
	}

	return func() {
		if a.withdrawn {
			return
		}
		a.withdrawn = true
		a.end()
		for i, r := range n.roles {
			if r == a {
				n.roles = append(n.roles[:i:i], n.roles[i+1:]...)
				break
			}
		}
	}
}

// Intercept claims discovery signals for role that reach n.  Claimed signals stop there, so an outer interceptor
// never sees nodes that belong to an inner one.
func Intercept(n *Node, role Role, fn func(*Signal)) (remove func()) {
	return n.Listen(EventType(role), func(e *Event) {
		sig, ok := e.Detail.(*Signal)
		if !ok {
			return
		}
		e.StopPropagation()
		fn(sig)
	})
}
