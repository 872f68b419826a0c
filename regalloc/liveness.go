package regalloc

import (
	"sort"

	"github.com/gross-lang/gross/ir"
	"github.com/gross-lang/gross/sched"
)

// position orders nodes by where the scheduler placed them: block RPO
// first, then instruction index within the block. This is the
// canonical order every RA-adjacent pass in this package compares
// against.
type position struct {
	rpo int
	idx int
}

func positionOf(s *sched.Schedule, n *ir.Node) position {
	b := s.BlockOf(n)
	return position{rpo: b.RPO, idx: b.IndexOf(n)}
}

func (p position) before(q position) bool {
	if p.rpo != q.rpo {
		return p.rpo < q.rpo
	}
	return p.idx < q.idx
}

// orderedUsers gathers n's value users in schedule order, chasing
// through any Phi user's own value users: a Phi shares its assigned
// location with the values feeding it (see Allocator.assign), so the
// def's live range has to extend to cover every point the Phi itself
// is read, not just the Phi node's own position.
func orderedUsers(s *sched.Schedule, n *ir.Node) []*ir.Node {
	seen := map[*ir.Node]bool{n: true}
	var result []*ir.Node
	queue := append([]*ir.Node(nil), n.ValueUsers()...)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if seen[u] {
			continue
		}
		seen[u] = true
		result = append(result, u)
		if u.Op == ir.OpPhi {
			queue = append(queue, u.ValueUsers()...)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return positionOf(s, result[i]).before(positionOf(s, result[j]))
	})
	return result
}

// liveRangeEnd returns the last node (in schedule order) that reads n,
// or nil if n has no value users.
func liveRangeEnd(s *sched.Schedule, n *ir.Node) *ir.Node {
	users := orderedUsers(s, n)
	if len(users) == 0 {
		return nil
	}
	return users[len(users)-1]
}
