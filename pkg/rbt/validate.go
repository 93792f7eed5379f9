package rbt

import "github.com/mikedlowis/data-structures/pkg/mem"

// Status classifies the result of a structural validation pass. Intended for
// test and fuzz harnesses, not production control flow.
type Status int

// Validation results. StatusOK means every checked invariant holds.
const (
	StatusOK Status = iota
	StatusUnknownColor
	StatusRedWithRedChild
	StatusOutOfOrder
	StatusSelfReference
	StatusBadParentPointer
	StatusBadRootColor
	StatusBlackHeightUnbalanced
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnknownColor:
		return "unknown color"
	case StatusRedWithRedChild:
		return "red node with red child"
	case StatusOutOfOrder:
		return "contents out of order"
	case StatusSelfReference:
		return "node is its own child"
	case StatusBadParentPointer:
		return "parent pointer mismatch"
	case StatusBadRootColor:
		return "root is not black"
	case StatusBlackHeightUnbalanced:
		return "black height unbalanced"
	default:
		return "invalid status"
	}
}

// openBound is the boxed sentinel representing an absent in-order bound.
// A bound is open when the tree's comparator says it equals the sentinel.
const openBound = -1

// Check verifies the tree's structural invariants: recognized colors, no
// red node with a red child, in-order contents within open sentinel bounds,
// no self-referencing children, parent pointers inverse to child pointers,
// a black parentless root, and a path-independent black-height. The first
// violation found is returned.
func Check(tree *Tree) Status {
	if tree == nil {
		return StatusOK
	}

	sentinel := mem.NewBox(openBound)
	defer mem.Release(sentinel)

	status := tree.checkNode(tree.root, sentinel, sentinel, sentinel)

	if status == StatusOK && tree.root != nil && tree.root.parent != nil {
		status = StatusBadParentPointer
	}

	if status == StatusOK && tree.root.Color() != Black {
		status = StatusBadRootColor
	}

	if status == StatusOK && blackHeight(tree.root) == unbalancedMarker {
		status = StatusBlackHeightUnbalanced
	}

	return status
}

func (t *Tree) checkNode(node *Node, minVal, maxVal, sentinel mem.Managed) Status {
	if node == nil {
		return StatusOK
	}

	switch {
	case node.color != Red && node.color != Black:
		return StatusUnknownColor
	case node.color == Red && (node.left.Color() != Black || node.right.Color() != Black):
		return StatusRedWithRedChild
	case t.compare(minVal, sentinel) != 0 && t.compare(node.contents, minVal) < 0:
		return StatusOutOfOrder
	case t.compare(maxVal, sentinel) != 0 && t.compare(node.contents, maxVal) > 0:
		return StatusOutOfOrder
	case node.left == node || node.right == node:
		return StatusSelfReference
	case node.left != nil && node.left.parent != node:
		return StatusBadParentPointer
	case node.right != nil && node.right.parent != node:
		return StatusBadParentPointer
	}

	status := t.checkNode(node.left, minVal, node.contents, sentinel)
	if status == StatusOK {
		status = t.checkNode(node.right, node.contents, maxVal, sentinel)
	}

	return status
}

// unbalancedMarker signals that a subtree's left and right black counts
// disagree.
const unbalancedMarker = -1

// blackHeight computes the common count of black nodes from node to any
// descendant implicit leaf, or unbalancedMarker if the count is not
// path-independent.
func blackHeight(node *Node) int {
	if node == nil {
		return 0
	}

	leftCount := blackHeight(node.left)
	rightCount := blackHeight(node.right)

	switch {
	case leftCount == unbalancedMarker || rightCount == unbalancedMarker:
		return unbalancedMarker
	case leftCount != rightCount:
		return unbalancedMarker
	case node.color == Black:
		return leftCount + 1
	default:
		return leftCount
	}
}
