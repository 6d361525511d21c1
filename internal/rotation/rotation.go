// Package rotation spreads a generated batch evenly over the allowed game
// types.
package rotation

// NextAllowedTypes picks the type ids the next generation call may use.
//
// A nil or empty allow-list means no restriction and yields nil. Otherwise
// types not produced yet are returned, in requested order. Once every type
// has been used, the single least used one is returned; ties go to the
// earliest in requested order.
//
// The result depends only on its arguments, so a batch can be replayed.
func NextAllowedTypes(requested, produced []string) []string {
	allowed := dedupe(requested)
	if len(allowed) == 0 {
		return nil
	}
	counts := Tally(produced)

	var unused []string
	for _, id := range allowed {
		if counts[id] == 0 {
			unused = append(unused, id)
		}
	}
	if len(unused) > 0 {
		return unused
	}

	best := allowed[0]
	for _, id := range allowed[1:] {
		if counts[id] < counts[best] {
			best = id
		}
	}
	return []string{best}
}

// Tally counts how often each id was produced.
func Tally(produced []string) map[string]int {
	counts := make(map[string]int, len(produced))
	for _, id := range produced {
		counts[id]++
	}
	return counts
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
