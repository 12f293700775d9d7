package store

import "taskcal/internal/model"

// Stats backs the progress bar under the task panel.
type Stats struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
}

func Summarize(tasks []model.Task) Stats {
	var st Stats
	st.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			st.Completed++
		}
	}
	if st.Total > 0 {
		st.Percent = float64(st.Completed) / float64(st.Total) * 100
	}
	return st
}
