package syntax

// Walk visits the subtree rooted at id in document order. Returning false
// from visit skips the children of the visited node.
func (t *Tree) Walk(id NodeID, visit func(id NodeID) bool) {
	if id == NoNode {
		return
	}
	if !visit(id) {
		return
	}
	for _, child := range t.nodes[id].Children {
		t.Walk(child, visit)
	}
}

// First finds the first node of the given kind in the subtree.
func (t *Tree) First(id NodeID, kind Kind) NodeID {
	result := NoNode
	t.Walk(id, func(n NodeID) bool {
		if result != NoNode {
			return false
		}
		if t.nodes[n].Kind == kind {
			result = n
			return false
		}
		return true
	})
	return result
}

// FindAll finds all nodes of the given kind in the subtree.
func (t *Tree) FindAll(id NodeID, kind Kind) []NodeID {
	var results []NodeID
	t.Walk(id, func(n NodeID) bool {
		if t.nodes[n].Kind == kind {
			results = append(results, n)
		}
		return true
	})
	return results
}

// Enclosing returns the closest strict ancestor of one of the given kinds.
func (t *Tree) Enclosing(id NodeID, kinds ...Kind) NodeID {
	for parent := t.Parent(id); parent != NoNode; parent = t.nodes[parent].Parent {
		for _, kind := range kinds {
			if t.nodes[parent].Kind == kind {
				return parent
			}
		}
	}
	return NoNode
}

// Contains reports whether id is ancestor or equal to descendant.
func (t *Tree) Contains(id, descendant NodeID) bool {
	for n := descendant; n != NoNode; n = t.nodes[n].Parent {
		if n == id {
			return true
		}
	}
	return false
}

// Attached reports whether id is still reachable from the root.
func (t *Tree) Attached(id NodeID) bool { return t.Contains(t.root, id) }

// Unwrap strips enclosing parentheses.
func (t *Tree) Unwrap(id NodeID) NodeID {
	for id != NoNode && t.nodes[id].Kind == KindParenthesized {
		named := t.NamedChildren(id)
		if len(named) != 1 {
			return id
		}
		id = named[0]
	}
	return id
}

// UnwrapParent returns the closest ancestor that is not a parenthesized
// expression, together with the child leading to it.
func (t *Tree) UnwrapParent(id NodeID) (parent, child NodeID) {
	child = id
	parent = t.Parent(id)
	for parent != NoNode && t.nodes[parent].Kind == KindParenthesized {
		child = parent
		parent = t.nodes[parent].Parent
	}
	return parent, child
}
