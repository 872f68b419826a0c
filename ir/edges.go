package ir

// This file implements the edge-mutation primitives that are the only
// legal way to change an edge in the graph: every one of them keeps
// Node.users in sync with the input vectors, so every edge always has
// a mirror in both the source's user list and the dest's input vector.

// AppendInput appends src as a new input of the given kind on dest.
func AppendInput(dest, src *Node, kind UseKind) {
	slice := dest.inputSlice(kind)
	slot := len(*slice)
	*slice = append(*slice, src)
	src.addUser(dest, kind, slot)
}

// SetInput overwrites dest's slot-th input of the given kind with src,
// dropping the previous source from dest's users.
func SetInput(dest *Node, slot int, src *Node, kind UseKind) {
	slice := dest.inputSlice(kind)
	if slot < 0 || slot >= len(*slice) {
		Fatalf("%s: set_%s_input slot %d out of range [0,%d)", dest, kind, slot, len(*slice))
	}
	old := (*slice)[slot]
	if old == src {
		return
	}
	if old != nil {
		old.removeUser(dest, kind, slot)
	}
	(*slice)[slot] = src
	if src != nil {
		src.addUser(dest, kind, slot)
	}
}

// RemoveInput deletes dest's slot-th input of the given kind, shifting
// every later slot (of that kind) down by one and re-indexing their
// back-edges to match.
func RemoveInput(dest *Node, slot int, kind UseKind) {
	slice := dest.inputSlice(kind)
	if slot < 0 || slot >= len(*slice) {
		Fatalf("%s: remove_%s_input slot %d out of range [0,%d)", dest, kind, slot, len(*slice))
	}
	old := (*slice)[slot]
	if old != nil {
		old.removeUser(dest, kind, slot)
	}
	*slice = append((*slice)[:slot], (*slice)[slot+1:]...)
	for i := slot; i < len(*slice); i++ {
		if s := (*slice)[i]; s != nil {
			s.removeUser(dest, kind, i+1)
			s.addUser(dest, kind, i)
		}
	}
}

// RemoveInputAll deletes every input of the given kind on dest that
// equals src.
func RemoveInputAll(dest, src *Node, kind UseKind) {
	slice := dest.inputSlice(kind)
	for {
		idx := -1
		for i, s := range *slice {
			if s == src {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		RemoveInput(dest, idx, kind)
	}
}

// ReplaceUseOfWith rewrites every edge of the given kind from user to
// oldSrc so it targets newSrc instead.
func ReplaceUseOfWith(user, oldSrc, newSrc *Node, kind UseKind) {
	slice := user.inputSlice(kind)
	for i, s := range *slice {
		if s == oldSrc {
			SetInput(user, i, newSrc, kind)
		}
	}
}

// ReplaceWith retargets every user of old on the given kinds to new
// instead. If kinds is empty, all three kinds are retargeted.
func ReplaceWith(old, new *Node, kinds ...UseKind) {
	if len(kinds) == 0 {
		kinds = []UseKind{KindValue, KindControl, KindEffect}
	}
	allowed := make(map[UseKind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	// Snapshot users first: ReplaceUseOfWith mutates old.users as we go.
	users := append([]*Node(nil), old.Users()...)
	seen := make(map[*Node]bool)
	for _, u := range users {
		if seen[u] {
			continue
		}
		seen[u] = true
		for k := range allowed {
			ReplaceUseOfWith(u, old, new, k)
		}
	}
}

// Kill severs all of node's inputs and redirects every remaining user to
// dead, then marks node itself with opcode Dead (logical removal; the
// node stays in the arena, never freed individually).
func Kill(node, dead *Node) {
	if node == dead {
		return
	}
	for _, kind := range []UseKind{KindValue, KindControl, KindEffect} {
		slice := node.inputSlice(kind)
		for i := len(*slice) - 1; i >= 0; i-- {
			RemoveInput(node, i, kind)
		}
	}
	ReplaceWith(node, dead)
	node.Op = OpDead
	node.value, node.control, node.effect = nil, nil, nil
}
