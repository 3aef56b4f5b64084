package task

import (
	"fmt"
)

// Task is a half-open range of grid rows [StartRow, EndRow).
type Task struct {
	ID       int
	StartRow int
	EndRow   int
}

func (t Task) String() string {
	return fmt.Sprintf("{Task ID: %d Rows: [%d, %d)}", t.ID, t.StartRow, t.EndRow)
}

func (t Task) Rows() int {
	return t.EndRow - t.StartRow
}

// Split partitions height rows into contiguous bands, roughly one per worker. The bands are
// ordered, disjoint and together cover every row exactly once. They differ in size by at most
// one row.
func Split(height int, workers int) []Task {
	if height <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > height {
		workers = height
	}

	tasks := make([]Task, 0, workers)
	base, extra := height/workers, height%workers
	start := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < extra {
			size++
		}
		tasks = append(tasks, Task{ID: i, StartRow: start, EndRow: start + size})
		start += size
	}
	return tasks
}
