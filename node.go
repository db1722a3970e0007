package grove

import (
	"fmt"
	"time"
)

// Object is anything that can live in the scene tree. Every implementation
// embeds a Node (directly or through Entity) which supplies the child list,
// the disabled flag and default hooks.
//
// Update and Render return the first error raised anywhere in the subtree;
// the traversal stops there and the frame is abandoned. Input hooks report
// whether the event was consumed.
type Object interface {
	Update(dt time.Duration) error
	Render(dt time.Duration) error
	OnKey(e KeyEvent) bool
	OnMouseButton(e MouseButtonEvent) bool
	OnMouseMove(e MouseMoveEvent) bool
	OnMouseWheel(e MouseWheelEvent) bool
	OnResize(e ResizeEvent) bool

	// Base returns the embedded Node.
	Base() *Node
}

// nodeIDCounter is a plain counter (no atomic, grove is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the base of every scene object. It exclusively owns its children:
// removing a child or disposing the node destroys the whole subtree. There is
// no parent back-pointer.
type Node struct {
	ID   uint32
	Name string

	children  []Object
	disabled  bool
	owned     bool
	disposed  bool
	onDispose []func()
}

// Base returns n. It lets any type embedding Node satisfy Object.
func (n *Node) Base() *Node {
	if n.ID == 0 {
		n.ID = nextNodeID()
	}
	return n
}

// CreateChild transfers ownership of child to parent and returns child, so a
// constructor call can be wrapped inline:
//
//	cube := grove.CreateChild(scene, grove.NewRenderable(scene, mesh, mat))
func CreateChild[T Object](parent Object, child T) T {
	parent.Base().AddChild(child)
	return child
}

// AddChild appends child to n's children and takes ownership of it.
// Panics if child is nil, already owned, or would create a cycle.
func (n *Node) AddChild(child Object) {
	if child == nil {
		panic("grove: cannot add nil child")
	}
	cb := child.Base()
	if cb == n {
		panic("grove: cannot add node as its own child")
	}
	if cb.owned {
		panic(fmt.Sprintf("grove: child %q already has an owner", cb.Name))
	}
	if cb.disposed {
		panic(fmt.Sprintf("grove: cannot add disposed child %q", cb.Name))
	}
	if isAncestor(child, n) {
		panic("grove: adding child would create a cycle")
	}
	cb.owned = true
	n.Base()
	n.children = append(n.children, child)
	if globalDebug {
		debugCheckChildCount(n)
	}
}

// isAncestor reports whether target is reachable from root.
func isAncestor(root Object, target *Node) bool {
	for _, c := range root.Base().children {
		if c.Base() == target || isAncestor(c, target) {
			return true
		}
	}
	return false
}

// RemoveChild detaches child from n and disposes it along with its subtree.
// Returns false when child is not a direct child of n.
func (n *Node) RemoveChild(child Object) bool {
	if child == nil {
		return false
	}
	cb := child.Base()
	for i, c := range n.children {
		if c.Base() != cb {
			continue
		}
		copy(n.children[i:], n.children[i+1:])
		n.children[len(n.children)-1] = nil
		n.children = n.children[:len(n.children)-1]
		cb.owned = false
		cb.Dispose()
		return true
	}
	return false
}

// RemoveChildren disposes every child of n.
func (n *Node) RemoveChildren() {
	children := n.children
	n.children = nil
	for _, c := range children {
		cb := c.Base()
		cb.owned = false
		cb.Dispose()
	}
}

// Children returns the child list. The returned slice MUST NOT be mutated.
func (n *Node) Children() []Object {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at index i. Panics if i is out of range.
func (n *Node) ChildAt(i int) Object {
	if i < 0 || i >= len(n.children) {
		panic("grove: child index out of range")
	}
	return n.children[i]
}

// Disabled reports whether the node's own hooks are switched off.
func (n *Node) Disabled() bool {
	return n.disabled
}

// SetDisabled switches the node's own systems and hooks off or back on.
// Children keep their own flags.
func (n *Node) SetDisabled(disabled bool) {
	n.disabled = disabled
}

// IsDisposed reports whether Dispose has been called.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// OnDispose registers fn to run when the node is disposed. Objects holding
// GPU resources use it to release them.
func (n *Node) OnDispose(fn func()) {
	n.onDispose = append(n.onDispose, fn)
}

// Dispose destroys the subtree rooted at n: children first, then n's own
// dispose callbacks. Calling Dispose twice is a no-op.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveChildren()
	for i := len(n.onDispose) - 1; i >= 0; i-- {
		n.onDispose[i]()
	}
	n.onDispose = nil
	n.disposed = true
}

// Walk visits n's descendants depth-first in child order, passing each
// object and its depth below n (children of n have depth 1). Returning false
// from fn skips that object's subtree.
func (n *Node) Walk(fn func(obj Object, depth int) bool) {
	walk(n.children, 1, fn)
}

func walk(children []Object, depth int, fn func(Object, int) bool) {
	for _, c := range children {
		if fn(c, depth) {
			walk(c.Base().children, depth+1, fn)
		}
	}
}

// Update propagates the update to every child in order.
func (n *Node) Update(dt time.Duration) error {
	return n.UpdateChildren(dt)
}

// Render propagates the render to every child in order.
func (n *Node) Render(dt time.Duration) error {
	return n.RenderChildren(dt)
}

// UpdateChildren calls Update on each child, stopping at the first error.
func (n *Node) UpdateChildren(dt time.Duration) error {
	for _, c := range n.children {
		if err := c.Update(dt); err != nil {
			return err
		}
	}
	return nil
}

// RenderChildren calls Render on each child, stopping at the first error.
func (n *Node) RenderChildren(dt time.Duration) error {
	for _, c := range n.children {
		if err := c.Render(dt); err != nil {
			return err
		}
	}
	return nil
}

// The default input hooks offer the event to children from last to first,
// so the most recently added child sees it first. The first child that
// consumes the event stops the dispatch.

// OnKey offers e to the children.
func (n *Node) OnKey(e KeyEvent) bool {
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].OnKey(e) {
			return true
		}
	}
	return false
}

// OnMouseButton offers e to the children.
func (n *Node) OnMouseButton(e MouseButtonEvent) bool {
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].OnMouseButton(e) {
			return true
		}
	}
	return false
}

// OnMouseMove offers e to the children.
func (n *Node) OnMouseMove(e MouseMoveEvent) bool {
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].OnMouseMove(e) {
			return true
		}
	}
	return false
}

// OnMouseWheel offers e to the children.
func (n *Node) OnMouseWheel(e MouseWheelEvent) bool {
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].OnMouseWheel(e) {
			return true
		}
	}
	return false
}

// OnResize offers e to the children. Unlike the other hooks every child is
// told about a resize; the result reports whether any of them consumed it.
func (n *Node) OnResize(e ResizeEvent) bool {
	handled := false
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].OnResize(e) {
			handled = true
		}
	}
	return handled
}
