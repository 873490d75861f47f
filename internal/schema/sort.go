package schema

import "strings"

// SortByDependencies orders tables so parents precede children. Cycles are
// broken by picking the unprocessed table with the best score: fewer
// outstanding parents first, and tables inside a two-way cycle before
// others. Ties go to the alphabetically first name.
func SortByDependencies(tables []*Table) []*Table {
	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[strings.ToUpper(t.Name)] = t
	}
	processed := make(map[string]bool)
	done := func(name string) bool {
		key := strings.ToUpper(name)
		// Dependencies outside the set never block.
		return processed[key] || byName[key] == nil
	}

	sorted := make([]*Table, 0, len(tables))
	for len(sorted) < len(tables) {
		added := false
		for _, t := range tables {
			if processed[strings.ToUpper(t.Name)] {
				continue
			}
			ready := true
			for _, dep := range t.Dependencies {
				if !done(dep) {
					ready = false
					break
				}
			}
			if ready {
				sorted = append(sorted, t)
				processed[strings.ToUpper(t.Name)] = true
				added = true
			}
		}
		if added {
			continue
		}

		var best *Table
		bestScore := 0
		for _, t := range tables {
			if processed[strings.ToUpper(t.Name)] {
				continue
			}
			score := 0
			circular := false
			for _, dep := range t.Dependencies {
				if done(dep) {
					continue
				}
				score -= 100
				if parent := byName[strings.ToUpper(dep)]; parent != nil && parent.dependsOn(t.Name) {
					circular = true
				}
			}
			if circular {
				score += 500
			}
			if best == nil || score > bestScore || (score == bestScore && t.Name < best.Name) {
				best, bestScore = t, score
			}
		}
		if best == nil {
			break // duplicate names
		}
		sorted = append(sorted, best)
		processed[strings.ToUpper(best.Name)] = true
	}
	return sorted
}
