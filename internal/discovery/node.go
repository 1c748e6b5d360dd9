// Package discovery models the composition tree that players are built from.  Nodes are attached and detached
// explicitly; a node that announces a role (provider, container) signals the nearest interested ancestor each time it
// connects, and that ancestor learns when the connection ends.
//
// A tree is owned by a single event loop and is not safe for concurrent use.
package discovery

import (
	"fmt"
	"strings"

	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/safe"
)

// Event travels from its target up through every ancestor until a listener stops it.
type Event struct {
	Type    string
	Detail  any
	Target  *Node
	stopped bool
}

// StopPropagation prevents ancestors from seeing the event.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether a listener claimed the event.
func (e *Event) Stopped() bool {
	return e.stopped
}

type nodeListener struct {
	id int
	fn func(*Event)
}

// Node is one element of the composition tree.
type Node struct {
	name      string
	parent    *Node
	children  []*Node
	connected bool
	listeners map[string][]nodeListener
	nextID    int
	roles     []*announcement
}

// NewRoot creates a connected root node.
func NewRoot(name string) *Node {
	return &Node{name: name, connected: true}
}

// NewNode creates a detached node.
func NewNode(name string) *Node {
	return &Node{name: name}
}

// Name returns the node's name.
func (n *Node) Name() string {
	return n.name
}

// Parent returns the node's parent, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the node's children.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Connected reports whether the node is reachable from a root.
func (n *Node) Connected() bool {
	return n.connected
}

// Path returns the names from the root to the node, joined by "/".  Used in logs.
func (n *Node) Path() string {
	var parts []string
	for c := n; c != nil; c = c.parent {
		parts = append(parts, c.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Append attaches child as the last child of n.  When n is connected the child's subtree connects, parents before
// children.
func (n *Node) Append(child *Node) error {
	if child.parent != nil {
		return fmt.Errorf("append %s to %s: node already has parent %s", child.name, n.name, child.parent.name)
	}
	for a := n; a != nil; a = a.parent {
		if a == child {
			return fmt.Errorf("append %s to %s: node would become its own ancestor", child.name, n.name)
		}
	}
	child.parent = n
	n.children = append(n.children, child)
	if n.connected {
		child.connect()
	}
	return nil
}

// Remove detaches n from its parent.  Its subtree disconnects, children before parents.
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	if n.connected {
		n.disconnect()
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Move re-parents n under parent.  Every announcement ends on the old connection before the new one begins.
func (n *Node) Move(parent *Node) error {
	n.Remove()
	return parent.Append(n)
}

// Listen registers fn for events of the given type that reach n, either targeted at it or bubbling up from a
// descendant.  The returned function removes the listener.
func (n *Node) Listen(eventType string, fn func(*Event)) (remove func()) {
	if n.listeners == nil {
		n.listeners = make(map[string][]nodeListener)
	}
	n.nextID++
	id := n.nextID
	n.listeners[eventType] = append(n.listeners[eventType], nodeListener{id: id, fn: fn})

	return func() {
		ls := n.listeners[eventType]
		for i, l := range ls {
			if l.id == id {
				n.listeners[eventType] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers e to n and then to each ancestor in turn, stopping once a listener calls StopPropagation.  It
// reports whether the event was claimed.
func (n *Node) Dispatch(e *Event) bool {
	if e.Target == nil {
		e.Target = n
	}
	for cur := n; cur != nil; cur = cur.parent {
		ls := append([]nodeListener(nil), cur.listeners[e.Type]...)
		for _, l := range ls {
			if err := safe.Call(func() { l.fn(e) }); err != nil {
				log.ReportError("discovery:"+cur.name, fmt.Errorf("listener for %s: %w", e.Type, err))
			}
		}
		if e.stopped {
			return true
		}
	}
	return false
}

func (n *Node) connect() {
	n.connected = true
	log.Trace("Node connected", "node", n.Path())
	for _, a := range n.roles {
		if !a.withdrawn {
			a.signal()
		}
	}
	for _, c := range n.Children() {
		if c.parent == n && !c.connected {
			c.connect()
		}
	}
}

func (n *Node) disconnect() {
	for _, c := range n.Children() {
		if c.connected {
			c.disconnect()
		}
	}
	for _, a := range n.roles {
		a.end()
	}
	n.connected = false
	log.Trace("Node disconnected", "node", n.Path())
}
