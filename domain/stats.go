package domain

// Stats summarizes the task set by status, priority and tag.
type Stats struct {
	Total             int
	Todo              int
	InProgress        int
	Done              int
	PriorityBreakdown map[Priority]int
	TagBreakdown      map[string]int
}

// NewStats returns an empty summary with every priority key present.
func NewStats() Stats {
	breakdown := make(map[Priority]int, len(Priorities))
	for _, p := range Priorities {
		breakdown[p] = 0
	}
	return Stats{
		PriorityBreakdown: breakdown,
		TagBreakdown:      make(map[string]int),
	}
}

// Add counts one task. Tags are counted per occurrence, so a tag listed
// twice on the same task contributes two.
func (s *Stats) Add(task Task) {
	s.Total++
	switch task.Status {
	case StatusTodo:
		s.Todo++
	case StatusInProgress:
		s.InProgress++
	case StatusDone:
		s.Done++
	}
	s.PriorityBreakdown[task.Priority]++
	for _, tag := range task.Tags {
		s.TagBreakdown[tag]++
	}
}
