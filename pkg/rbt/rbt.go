// Package rbt implements an intrusive red-black tree whose nodes, trees and
// contents are all reference-counted objects from pkg/mem.
//
// A node owns one reference to its contents and to each child; the parent
// pointer is a non-owning back-reference used only while rebalancing.
// Releasing a tree releases its root, and the node finalizers cascade the
// teardown through the whole structure.
//
// The tree is single-threaded, like the ownership layer underneath it.
package rbt

import (
	"reflect"

	"github.com/mikedlowis/data-structures/pkg/mem"
)

// Comparator orders two node contents: negative if a sorts before b, zero if
// they are equal, positive if a sorts after b. It must be a pure function
// and must order consistently for the lifetime of the tree.
type Comparator func(a, b mem.Managed) int

// Color of a tree node.
type Color uint8

// Node colors. Implicit leaves (nil children) count as Black.
const (
	Red Color = iota
	Black
)

type direction int

const (
	left direction = iota
	right
)

func (d direction) opposite() direction {
	if d == left {
		return right
	}

	return left
}

// Node is a tree node. It owns one reference to its contents and to each
// child; parent is a plain back-reference.
type Node struct {
	mem.Object

	left, right *Node
	parent      *Node
	color       Color
	contents    mem.Managed
}

// newNode creates a detached Red node owning one reference to contents.
func newNode(contents mem.Managed) *Node {
	node := &Node{
		color:    Red,
		contents: mem.Retain(contents),
	}
	mem.Initialize(node, node.finalize)

	return node
}

// finalize releases the relations the node owns. Children detached by the
// delete path have already been nil'd out, so only still-attached subtrees
// cascade from here.
func (n *Node) finalize() {
	mem.Release(n.contents)

	if n.left != nil {
		mem.Release(n.left)
	}

	if n.right != nil {
		mem.Release(n.right)
	}
}

// Color reports the node's color. A nil node is an implicit leaf and counts
// as Black.
func (n *Node) Color() Color {
	if n == nil {
		return Black
	}

	return n.color
}

// Contents returns the managed value stored in the node. The reference
// stays owned by the node; retain it to keep it past the node's lifetime.
func (n *Node) Contents() mem.Managed {
	return n.contents
}

// Left returns the left child, nil for an implicit leaf.
func (n *Node) Left() *Node {
	return n.left
}

// Right returns the right child, nil for an implicit leaf.
func (n *Node) Right() *Node {
	return n.right
}

// Parent returns the non-owning parent back-reference.
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) child(dir direction) *Node {
	if dir == left {
		return n.left
	}

	return n.right
}

func (n *Node) setChild(dir direction, child *Node) {
	if dir == left {
		n.left = child
	} else {
		n.right = child
	}
}

// Tree is a red-black tree ordered by a caller-supplied comparator.
type Tree struct {
	mem.Object

	root    *Node
	compare Comparator
}

// New creates an empty tree. A nil comparator falls back to handle-identity
// ordering, which makes the tree a set of distinct references.
func New(compare Comparator) *Tree {
	if compare == nil {
		compare = identityComparator
	}

	tree := &Tree{compare: compare}
	mem.Initialize(tree, tree.finalize)

	return tree
}

func (t *Tree) finalize() {
	if t.root != nil {
		mem.Release(t.root)
	}
}

// Root returns the root node, nil when the tree is empty.
func (t *Tree) Root() *Node {
	return t.root
}

// identityComparator orders contents by the address of their referent.
func identityComparator(a, b mem.Managed) int {
	pa := reflect.ValueOf(a).Pointer()
	pb := reflect.ValueOf(b).Pointer()

	switch {
	case pa == pb:
		return 0
	case pa < pb:
		return -1
	default:
		return 1
	}
}

// Lookup finds a node whose contents compare equal to value. Returns nil if
// no such node exists; with duplicates in the tree, which matching node is
// returned is unspecified.
func (t *Tree) Lookup(value mem.Managed) *Node {
	return t.lookupNode(t.root, value)
}

func (t *Tree) lookupNode(node *Node, value mem.Managed) *Node {
	if node == nil {
		return nil
	}

	comp := t.compare(value, node.contents)

	switch {
	case comp == 0:
		return node
	case comp < 0:
		return t.lookupNode(node.left, value)
	default:
		return t.lookupNode(node.right, value)
	}
}

// rotate re-parents node's dir-opposite child into node's place:
//
// Left rotation:
//
//	  X              Y
//	A   Y    =>    X   C
//	  B C        A B
//
// Right rotation is the mirror image. All three affected parent pointers are
// fixed, and the tree root is updated when node was the root. The rotation
// is refused when the would-be pivot child is absent.
func (t *Tree) rotate(node *Node, dir direction) {
	pivot := node.child(dir.opposite())
	if pivot == nil {
		return
	}

	if node.parent == nil {
		t.root = pivot
	} else if node.parent.left == node {
		node.parent.left = pivot
	} else {
		node.parent.right = pivot
	}

	pivot.parent = node.parent

	// Move the inner subtree across. Overwriting node's pivot-side slot is
	// safe: it held the pivot itself.
	inner := pivot.child(dir)
	node.setChild(dir.opposite(), inner)

	if inner != nil {
		inner.parent = node
	}

	pivot.setChild(dir, node)
	node.parent = pivot
}

// Insert adds value to the tree, taking one reference to it, and returns the
// new node. Contents comparing equal to an existing node are placed in its
// right subtree, so duplicates are kept.
func (t *Tree) Insert(value mem.Managed) *Node {
	node := newNode(value)
	t.insertNode(node, t.root)

	return node
}

func (t *Tree) insertNode(node, parent *Node) {
	switch {
	case parent == nil:
		// Inserting the root.
		t.root = node
		t.insertRecolor(node)
	case t.compare(node.contents, parent.contents) < 0:
		if parent.left != nil {
			t.insertNode(node, parent.left)
		} else {
			node.parent = parent
			parent.left = node
			t.insertRecolor(node)
		}
	default:
		if parent.right != nil {
			t.insertNode(node, parent.right)
		} else {
			node.parent = parent
			parent.right = node
			t.insertRecolor(node)
		}
	}
}

// insertRecolor restores the color invariants after node was attached,
// recursing up the tree when a red uncle pushes the conflict to the
// grandparent.
func (t *Tree) insertRecolor(node *Node) {
	parent := node.parent

	var grandparent *Node
	if parent != nil {
		grandparent = parent.parent
	}

	var uncle *Node
	if grandparent != nil {
		if parent == grandparent.left {
			uncle = grandparent.right
		} else {
			uncle = grandparent.left
		}
	}

	switch {
	case parent == nil:
		// Case 1: node is the root.
		node.color = Black
	case parent.Color() == Black:
		// Case 2: nothing to fix.
	case uncle.Color() == Red:
		// Case 3: parent and uncle are both red; paint both black, push the
		// red up to the grandparent and re-examine there.
		grandparent.color = Red
		parent.color = Black
		uncle.color = Black
		t.insertRecolor(grandparent)
	default:
		// Case 4/5: red parent, black uncle.
		nodeSide := childSide(node)
		parentSide := childSide(parent)

		if nodeSide != parentSide {
			// Inside configuration: rotate it outside first.
			t.rotate(parent, parentSide)
			node = parent // parent is now the lowest of the three
		}

		t.insertRebalance(node, parentSide)
	}
}

// insertRebalance finishes the outside case: rotate the grandparent away
// from the heavy side and swap the colors. Black-height is locally restored,
// so the fixup terminates here.
func (t *Tree) insertRebalance(node *Node, heavySide direction) {
	parent := node.parent
	grandparent := parent.parent

	t.rotate(grandparent, heavySide.opposite())
	parent.color = Black
	grandparent.color = Red
}

// childSide reports which side of its parent node hangs on.
func childSide(node *Node) direction {
	if node == node.parent.left {
		return left
	}

	return right
}

// Delete removes one node whose contents compare equal to value and releases
// it. Absence is not an error: deleting a missing value is a no-op.
func (t *Tree) Delete(value mem.Managed) {
	doomed := t.Lookup(value)
	if doomed != nil {
		t.deleteNode(doomed)
	}
}

// deleteRebalance repairs the black-height deficit on node's path before the
// node is detached. The node is still in place; the deficit is one black
// node relative to every other path.
func (t *Tree) deleteRebalance(node *Node) {
	parent := node.parent
	if parent == nil {
		// The deficit reached the root, where it is global and therefore
		// harmless. Repainting is a defensive no-op: the root is already
		// required to be black.
		node.color = Black

		return
	}

	nodeSide := childSide(node)
	sib := parent.child(nodeSide.opposite())

	var insideNibling, outsideNibling *Node
	if sib != nil {
		insideNibling = sib.child(nodeSide)
		outsideNibling = sib.child(nodeSide.opposite())
	}

	switch {
	case sib.Color() == Red:
		// Rotate so the sibling is black, then retry with the new shape.
		t.rotate(parent, nodeSide)
		parent.color = Red
		sib.color = Black
		t.deleteRebalance(node)
	case insideNibling.Color() == Black && outsideNibling.Color() == Black:
		// Both niblings black: paint the sibling red. If the parent is red
		// it absorbs the deficit; otherwise the deficit moves up a level.
		sib.color = Red

		if parent.Color() == Red {
			parent.color = Black
		} else {
			t.deleteRebalance(parent)
		}
	case outsideNibling.Color() == Black:
		// Inside nibling red, outside black: rotate the sibling to convert
		// to the outside case, then retry.
		t.rotate(sib, nodeSide.opposite())
		sib.color = Red
		insideNibling.color = Black
		t.deleteRebalance(node)
	default:
		// Outside nibling red: one rotation restores black-height for good.
		t.rotate(parent, nodeSide)
		sib.color = parent.color
		parent.color = Black
		outsideNibling.color = Black
	}
}

// rightmostDescendent finds the in-order predecessor anchor: the rightmost
// node of the given subtree.
func rightmostDescendent(node *Node) *Node {
	if node.right != nil {
		return rightmostDescendent(node.right)
	}

	return node
}

func (t *Tree) deleteNode(node *Node) {
	parent := node.parent

	if node.left != nil && node.right != nil {
		// Two children: remove the in-order predecessor first (it has at
		// most one child, handled below), then splice it into node's
		// position with node's color. The extra retain keeps the
		// replacement alive across its own removal.
		replacement := mem.Retain(rightmostDescendent(node.left))
		t.deleteNode(replacement)

		// Removing the predecessor can rebalance and rotate node itself;
		// re-read the parent so the splice lands in the live slot.
		parent = node.parent

		if node.left != nil {
			node.left.parent = replacement
		}

		if node.right != nil {
			node.right.parent = replacement
		}

		replacement.left = node.left
		replacement.right = node.right
		replacement.parent = node.parent
		replacement.color = node.color

		switch {
		case parent == nil:
			t.root = replacement
		case node == parent.left:
			parent.left = replacement
		default:
			parent.right = replacement
		}
	} else {
		// At most one non-leaf child.
		var child *Node

		switch {
		case node.Color() == Red:
			// A red node with at most one child has none at all, and cannot
			// be the root. Detaching it changes no black counts.
			if node == parent.left {
				parent.left = nil
			} else {
				parent.right = nil
			}
		case node.left.Color() == Red || node.right.Color() == Red:
			// Black node with a red child: promote the child and paint it
			// black to restore the path's black count.
			child = node.left
			if child == nil {
				child = node.right
			}

			child.color = Black
		default:
			// Black node, black or absent child: rebalance while the node
			// is still anchored, then detach.
			t.deleteRebalance(node)

			// The rebalance may have rotated the tree; re-read relatives.
			parent = node.parent
			child = node.left
			if child == nil {
				child = node.right
			}
		}

		if child != nil {
			child.parent = parent
		}

		switch {
		case parent == nil:
			t.root = child
		case node == parent.right:
			parent.right = child
		default:
			parent.left = child
		}
	}

	// The child slots were handed over to the replacement or the parent;
	// clear them so the finalizer only releases the contents.
	node.left = nil
	node.right = nil
	node.parent = nil
	mem.Release(node)
}
