package poster

// similarityThreshold is the maximum perceptual hash distance at which two
// backgrounds count as the same picture.
const similarityThreshold = 5

// dedupeResults keeps the first occurrence of each distinct background, in
// request order. Fallback (white canvas) results have no background and are
// deduplicated against each other: one white variant is kept at most.
func dedupeResults(results []*RenderResult) []*RenderResult {
	var (
		kept         []*RenderResult
		seenFallback bool
	)
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Background == nil {
			if seenFallback {
				continue
			}
			seenFallback = true
			kept = append(kept, r)
			continue
		}
		duplicate := false
		for _, k := range kept {
			if k.Background != nil && k.Background.Equivalent(r.Background) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, r)
		}
	}
	return kept
}
