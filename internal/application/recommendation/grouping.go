package recommendation

// CityGroup merges same-city matches into one recommendation entry.  The
// representative top zip is the city's best-ranked zip; per-zip scores,
// match types, and issues are preserved untouched inside Zips.
type CityGroup struct {
	City     string  `json:"city"`
	TopZip   string  `json:"top_zip"`
	TopScore float64 `json:"top_score"`
	Zips     []Match `json:"zips"`
}

// groupByCity folds a ranked match list into city groups, preserving rank
// order: groups appear in order of their best zip, and zips inside a group
// keep their relative order.  A limit > 0 caps the number of groups.
func groupByCity(matches []Match, limit int) []CityGroup {
	groups := []CityGroup{}
	index := make(map[string]int)
	for _, m := range matches {
		i, ok := index[m.City]
		if !ok {
			index[m.City] = len(groups)
			groups = append(groups, CityGroup{
				City:     m.City,
				TopZip:   m.Zip,
				TopScore: m.Score,
			})
			i = len(groups) - 1
		}
		groups[i].Zips = append(groups[i].Zips, m)
	}
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}
