package outline

// Document is an ordered, never-empty list of lines.
//
// Mutations are copy-on-write: each returns a new Document and leaves the
// receiver usable, or fails with a StructuralViolation and changes nothing.
//
// Invariants held by every Document:
//   - level[0] == 0 and level[i] <= level[i-1]+1
//   - a description directly follows the title it is paired to
//   - at least one line
//   - ids are unique and non-empty
type Document struct {
	lines []Line
}

// NewDocument validates lines and wraps them. The slice is copied.
func NewDocument(lines []Line) (Document, error) {
	cp := cloneLines(lines)
	for i := range cp {
		cp[i].Content = cp[i].Content.Normalize()
	}
	if err := Validate(cp); err != nil {
		return Document{}, err
	}
	return Document{lines: cp}, nil
}

// Single returns a document holding one empty title line.
func Single(id string) Document {
	return Document{lines: []Line{{ID: id, Mode: ModeTitle}}}
}

func (d Document) Len() int { return len(d.lines) }

// Lines returns a copy of the lines.
func (d Document) Lines() []Line { return cloneLines(d.lines) }

func (d Document) At(i int) (Line, bool) {
	if i < 0 || i >= len(d.lines) {
		return Line{}, false
	}
	return d.lines[i].Clone(), true
}

func (d Document) Index(id string) int {
	for i := range d.lines {
		if d.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (d Document) Line(id string) (Line, bool) {
	return d.At(d.Index(id))
}

func (d Document) IDs() []string {
	out := make([]string, len(d.lines))
	for i := range d.lines {
		out[i] = d.lines[i].ID
	}
	return out
}

func (d Document) Levels() []int {
	out := make([]int, len(d.lines))
	for i := range d.lines {
		out[i] = d.lines[i].Level
	}
	return out
}

// PairedDescription returns the index of the description paired with the
// title at i, or -1.
func (d Document) PairedDescription(i int) int {
	if i < 0 || i+1 >= len(d.lines) || !d.lines[i].IsTitle() {
		return -1
	}
	next := d.lines[i+1]
	if next.IsDescription() && next.ID == DescriptionID(d.lines[i].ID) {
		return i + 1
	}
	return -1
}

// PairedTitle returns the index of the title owning the description at i, or -1.
func (d Document) PairedTitle(i int) int {
	if i <= 0 || i >= len(d.lines) || !d.lines[i].IsDescription() {
		return -1
	}
	return i - 1
}

// RunEnd is the last index of the title/description run containing i.
func (d Document) RunEnd(i int) int {
	if j := d.PairedDescription(i); j >= 0 {
		return j
	}
	return i
}

// RunStart is the first index of the title/description run containing i.
func (d Document) RunStart(i int) int {
	if j := d.PairedTitle(i); j >= 0 {
		return j
	}
	return i
}

// MaxLevelAt is the deepest level allowed at i given its predecessor.
func (d Document) MaxLevelAt(i int) int {
	if i <= 0 {
		return 0
	}
	return d.lines[i-1].Level + 1
}

// InsertAt inserts l so that it ends up at index i. Lines after it are
// re-clamped so that continuity still holds.
func (d Document) InsertAt(i int, l Line) (Document, error) {
	if i < 0 || i > len(d.lines) {
		return d, violation("insert", i, "index out of range [0,%d]", len(d.lines))
	}
	if l.ID == "" {
		return d, violation("insert", i, "empty id")
	}
	if d.Index(l.ID) >= 0 {
		return d, violation("insert", i, "duplicate id %q", l.ID)
	}
	if !l.Mode.Valid() {
		return d, violation("insert", i, "invalid mode %q", l.Mode)
	}
	if l.Level < 0 {
		return d, violation("insert", i, "negative level %d", l.Level)
	}
	if max := d.MaxLevelAt(i); l.Level > max {
		return d, violation("insert", i, "level %d exceeds %d", l.Level, max)
	}
	if l.IsDescription() {
		if i == 0 || !d.lines[i-1].IsTitle() || DescriptionID(d.lines[i-1].ID) != l.ID {
			return d, violation("insert", i, "description %q has no paired title before it", l.ID)
		}
	}
	if i < len(d.lines) && d.lines[i].IsDescription() {
		return d, violation("insert", i, "would separate description %q from its title", d.lines[i].ID)
	}

	out := make([]Line, 0, len(d.lines)+1)
	out = append(out, d.lines[:i]...)
	l = l.Clone()
	l.Content = l.Content.Normalize()
	out = append(out, l)
	out = append(out, d.lines[i:]...)
	reflow(out, i+1)
	return Document{lines: out}, nil
}

// RemoveAt deletes the line at i. Removing the only line clears its content
// instead. A title cannot be removed while its description is still present.
func (d Document) RemoveAt(i int) (Document, error) {
	if i < 0 || i >= len(d.lines) {
		return d, violation("remove", i, "index out of range")
	}
	if len(d.lines) == 1 {
		out := cloneLines(d.lines)
		out[0].Content = nil
		out[0].Mode = ModeTitle
		out[0].Level = 0
		return Document{lines: out}, nil
	}
	if d.PairedDescription(i) >= 0 {
		return d, violation("remove", i, "title %q still owns a description", d.lines[i].ID)
	}
	out := make([]Line, 0, len(d.lines)-1)
	out = append(out, d.lines[:i]...)
	out = append(out, d.lines[i+1:]...)
	reflow(out, i)
	return Document{lines: cloneLines(out)}, nil
}

// SetLevel changes the level of a single line. Neither neighbour is adjusted.
func (d Document) SetLevel(i, level int) (Document, error) {
	if i < 0 || i >= len(d.lines) {
		return d, violation("set-level", i, "index out of range")
	}
	if level < 0 {
		return d, violation("set-level", i, "negative level %d", level)
	}
	if max := d.MaxLevelAt(i); level > max {
		return d, violation("set-level", i, "level %d exceeds %d", level, max)
	}
	if i+1 < len(d.lines) && d.lines[i+1].Level > level+1 {
		return d, violation("set-level", i, "line %d would exceed continuity", i+1)
	}
	out := cloneLines(d.lines)
	out[i].Level = level
	return Document{lines: out}, nil
}

// SetLevels replaces every level at once and validates the result.
func (d Document) SetLevels(levels []int) (Document, error) {
	if len(levels) != len(d.lines) {
		return d, violation("set-levels", 0, "got %d levels for %d lines", len(levels), len(d.lines))
	}
	out := cloneLines(d.lines)
	for i := range out {
		out[i].Level = levels[i]
	}
	if err := Validate(out); err != nil {
		return d, err
	}
	return Document{lines: out}, nil
}

func (d Document) SetMode(i int, m Mode) (Document, error) {
	if i < 0 || i >= len(d.lines) {
		return d, violation("set-mode", i, "index out of range")
	}
	if !m.Valid() {
		return d, violation("set-mode", i, "invalid mode %q", m)
	}
	if d.lines[i].Mode == m {
		return d, nil
	}
	out := cloneLines(d.lines)
	out[i].Mode = m
	if err := Validate(out); err != nil {
		return d, err
	}
	return Document{lines: out}, nil
}

func (d Document) ReplaceContent(i int, c Content) (Document, error) {
	if i < 0 || i >= len(d.lines) {
		return d, violation("replace-content", i, "index out of range")
	}
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	out[i].Content = c.Normalize()
	return Document{lines: out}, nil
}

// ReplaceLine swaps the line at i for l, keeping every invariant.
func (d Document) ReplaceLine(i int, l Line) (Document, error) {
	if i < 0 || i >= len(d.lines) {
		return d, violation("replace-line", i, "index out of range")
	}
	out := cloneLines(d.lines)
	l = l.Clone()
	l.Content = l.Content.Normalize()
	out[i] = l
	if err := Validate(out); err != nil {
		return d, err
	}
	return Document{lines: out}, nil
}

// Validate checks every document invariant.
func Validate(lines []Line) error {
	if len(lines) == 0 {
		return violation("validate", 0, "document has no lines")
	}
	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		if l.ID == "" {
			return violation("validate", i, "empty id")
		}
		if _, dup := seen[l.ID]; dup {
			return violation("validate", i, "duplicate id %q", l.ID)
		}
		seen[l.ID] = struct{}{}
		if !l.Mode.Valid() {
			return violation("validate", i, "invalid mode %q", l.Mode)
		}
		if l.Level < 0 {
			return violation("validate", i, "negative level %d", l.Level)
		}
		max := 0
		if i > 0 {
			max = lines[i-1].Level + 1
		}
		if l.Level > max {
			return violation("validate", i, "level %d exceeds %d", l.Level, max)
		}
		if l.IsDescription() {
			if i == 0 {
				return violation("validate", i, "description cannot be the first line")
			}
			prev := lines[i-1]
			if !prev.IsTitle() || DescriptionID(prev.ID) != l.ID {
				return violation("validate", i, "description %q is not paired with %q", l.ID, prev.ID)
			}
		}
		for _, sp := range l.Content {
			if sp.Token == nil {
				continue
			}
			if !sp.Token.Kind.Valid() {
				return violation("validate", i, "invalid token kind %q", sp.Token.Kind)
			}
			if sp.Token.RefID == "" {
				return violation("validate", i, "token without ref id")
			}
		}
	}
	return nil
}

// reflow lowers levels from index from onwards until continuity holds again.
func reflow(lines []Line, from int) {
	for i := from; i < len(lines); i++ {
		max := 0
		if i > 0 {
			max = lines[i-1].Level + 1
		}
		if lines[i].Level <= max {
			return
		}
		lines[i].Level = max
	}
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i := range lines {
		out[i] = lines[i].Clone()
	}
	return out
}
