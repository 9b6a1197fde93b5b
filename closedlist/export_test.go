package closedlist

import "fmt"

// CheckRing verifies the link structure of l: every node's neighbours
// point back at it, walking next from head visits the nodes in insertion
// order and returns to head after Len steps.
func CheckRing[T comparable](l *ClosedList[T]) error {
	if l.empty() {
		if len(l.nodes) != 0 || len(l.free) != 0 {
			return fmt.Errorf("empty list still holds %d nodes", len(l.nodes))
		}
		return nil
	}

	if len(l.nodes)-len(l.free) != len(l.order) {
		return fmt.Errorf("arena has %d live nodes, order has %d", len(l.nodes)-len(l.free), len(l.order))
	}
	if l.order[0] != l.head {
		return fmt.Errorf("head slot %d is not first in order (%d)", l.head, l.order[0])
	}

	slot := l.head
	for i := 0; i < len(l.order); i++ {
		if slot != l.order[i] {
			return fmt.Errorf("walk reached slot %d at %d, order has %d", slot, i, l.order[i])
		}
		n := l.nodes[slot]
		if l.nodes[n.next].prev != slot {
			return fmt.Errorf("slot %d: next.prev is %d", slot, l.nodes[n.next].prev)
		}
		if l.nodes[n.prev].next != slot {
			return fmt.Errorf("slot %d: prev.next is %d", slot, l.nodes[n.prev].next)
		}
		slot = n.next
	}
	if slot != l.head {
		return fmt.Errorf("ring did not close: ended at slot %d", slot)
	}

	if l.Position() < 0 {
		return fmt.Errorf("cursor slot %d is not in the ring", l.current)
	}

	return nil
}
