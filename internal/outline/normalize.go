package outline

// Normalize repairs lines coming from outside the editor so that they form a
// valid document: levels are clamped into [0, maxLevel] and to continuity,
// descriptions without their title become titles, missing or duplicate ids
// are replaced with newID(). A maxLevel <= 0 means unbounded.
func Normalize(lines []Line, maxLevel int, newID func() string) []Line {
	if newID == nil {
		newID = NewID
	}
	out := make([]Line, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		l = l.Clone()
		l.Content = l.Content.Normalize()
		if !l.Mode.Valid() {
			l.Mode = ModeTitle
		}
		if l.IsDescription() {
			n := len(out)
			if n == 0 || !out[n-1].IsTitle() || DescriptionID(out[n-1].ID) != l.ID {
				l.Mode = ModeTitle
				l.ID = ""
			}
		}
		if _, dup := seen[l.ID]; l.ID == "" || dup {
			l.ID = newID()
		}
		seen[l.ID] = struct{}{}

		max := 0
		if n := len(out); n > 0 {
			max = out[n-1].Level + 1
		}
		if maxLevel > 0 && max > maxLevel {
			max = maxLevel
		}
		if l.Level > max {
			l.Level = max
		}
		if l.Level < 0 {
			l.Level = 0
		}
		out = append(out, l)
	}
	if len(out) == 0 {
		out = append(out, Line{ID: newID(), Mode: ModeTitle})
	}
	return out
}
