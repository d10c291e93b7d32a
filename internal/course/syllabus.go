package course

// Module is one unit of a syllabus: a title plus an ordered topic list.
type Module struct {
	Title  string   `json:"title"`
	Topics []string `json:"topics"`
}

// Syllabus is an ordered plan of modules for one course.
type Syllabus struct {
	Topic   string   `json:"topic"`
	Level   string   `json:"level"`
	Modules []Module `json:"modules"`
}

// Cursor addresses a position in a syllabus. The zero value points at the
// first topic of the first module.
type Cursor struct {
	Module int
	Topic  int
}

// TopicAt returns the topic under the cursor, or "" when the cursor is
// out of range (completed course, empty module).
func (s *Syllabus) TopicAt(c Cursor) string {
	if c.Module < 0 || c.Module >= len(s.Modules) {
		return ""
	}
	m := s.Modules[c.Module]
	if c.Topic < 0 || c.Topic >= len(m.Topics) {
		return ""
	}
	return m.Topics[c.Topic]
}

// Advance moves the cursor to the next topic: first within the current
// module, then to the next module's first topic. Returns the new cursor
// and whether the course is now complete. Modules with no topics are
// skipped.
func (s *Syllabus) Advance(c Cursor) (Cursor, bool) {
	if c.Module >= len(s.Modules) {
		return c, true
	}

	c.Topic++
	for c.Module < len(s.Modules) {
		if c.Topic < len(s.Modules[c.Module].Topics) {
			return c, false
		}
		c.Module++
		c.Topic = 0
	}
	return c, true
}

// Progress computes percent complete from the cursor position: fully
// finished modules each count as one unit, plus the fraction of the
// current module already covered. A module with no topics contributes a
// zero fraction. The result is clamped to [0, 100].
func (s *Syllabus) Progress(c Cursor, completed bool) float64 {
	total := len(s.Modules)
	if total == 0 || completed {
		if completed {
			return 100
		}
		return 0
	}

	done := float64(c.Module)
	if c.Module < total {
		if n := len(s.Modules[c.Module].Topics); n > 0 {
			done += float64(c.Topic) / float64(n)
		}
	}

	pct := done / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// TotalTopics counts topics across all modules.
func (s *Syllabus) TotalTopics() int {
	n := 0
	for _, m := range s.Modules {
		n += len(m.Topics)
	}
	return n
}
