package tagger

import "firestige.xyz/tagger/internal/core"

// Selector picks tags by family and role. A zero field matches any value.
type Selector struct {
	Family core.Family
	Role   core.Role
}

func (s Selector) String() string {
	return s.Family.String() + "/" + s.Role.String()
}

// Results is the output of a tagging pass, in capture order.
type Results []core.TaggedPacket

// Count returns how many tagged packets the selector matches.
func (rs Results) Count(sel Selector) int {
	n := 0
	for i := range rs {
		if rs[i].Tag.Is(sel.Family, sel.Role) {
			n++
		}
	}
	return n
}

// Filter returns the tagged packets the selector matches.
func (rs Results) Filter(sel Selector) Results {
	var out Results
	for i := range rs {
		if rs[i].Tag.Is(sel.Family, sel.Role) {
			out = append(out, rs[i])
		}
	}
	return out
}

// Tagged returns how many packets carry a tag.
func (rs Results) Tagged() int {
	return rs.Count(Selector{})
}

// Counts returns the number of tags per family/role pair that occurs.
func (rs Results) Counts() map[Selector]int {
	counts := make(map[Selector]int)
	for i := range rs {
		if t := rs[i].Tag; t != nil {
			counts[Selector{Family: t.Family, Role: t.Role}]++
		}
	}
	return counts
}
