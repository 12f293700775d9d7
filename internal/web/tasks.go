package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gosimple/slug"

	"taskcal/internal/calendar"
	"taskcal/internal/ics"
	appLog "taskcal/internal/log"
	"taskcal/internal/model"
	"taskcal/internal/store"
)

// taskDTO is the JSON view of a task. Durations travel as whole minutes.
type taskDTO struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Priority        model.Priority  `json:"priority"`
	Completed       bool            `json:"completed"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Color           model.Color     `json:"color"`
	Description     string          `json:"description,omitempty"`
	Tags            []string        `json:"tags"`
	TimeSlot        string          `json:"time_slot,omitempty"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
	Subtasks        []model.Subtask `json:"subtasks"`
	SubtasksDone    int             `json:"subtasks_done"`
}

func toTaskDTO(t model.Task) taskDTO {
	done, _ := t.SubtaskProgress()
	dto := taskDTO{
		ID:              t.ID,
		Title:           t.Title,
		Priority:        t.Priority,
		Completed:       t.Completed,
		DueDate:         t.DueDate,
		Color:           t.Color,
		Description:     t.Description,
		Tags:            t.Tags,
		TimeSlot:        t.TimeSlot,
		DurationMinutes: int(t.Duration / time.Minute),
		Subtasks:        t.Subtasks,
		SubtasksDone:    done,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if dto.Subtasks == nil {
		dto.Subtasks = []model.Subtask{}
	}
	return dto
}

func toTaskDTOs(tasks []model.Task) []taskDTO {
	out := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskDTO(t))
	}
	return out
}

// createTaskRequest is the body of POST /api/tasks.
type createTaskRequest struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Priority        string   `json:"priority"`
	Color           string   `json:"color"`
	DueDate         string   `json:"due_date"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	TimeSlot        string   `json:"time_slot"`
	DurationMinutes int      `json:"duration_minutes"`
	Subtasks        []string `json:"subtasks"`
}

func (req createTaskRequest) toTask(loc *time.Location) (model.Task, error) {
	t := model.Task{
		ID:          strings.TrimSpace(req.ID),
		Title:       strings.TrimSpace(req.Title),
		Priority:    model.PriorityMedium,
		Color:       model.ColorBlue,
		Description: req.Description,
		TimeSlot:    req.TimeSlot,
		Duration:    time.Duration(req.DurationMinutes) * time.Minute,
	}
	if req.Priority != "" {
		p, err := model.ParsePriority(req.Priority)
		if err != nil {
			return t, err
		}
		t.Priority = p
	}
	if req.Color != "" {
		c, err := model.ParseColor(req.Color)
		if err != nil {
			return t, err
		}
		t.Color = c
	}
	if req.DueDate != "" {
		d, err := parseDate(req.DueDate, loc)
		if err != nil {
			return t, err
		}
		t.DueDate = &d
	}
	for _, tag := range req.Tags {
		t.AddTag(tag)
	}
	for _, title := range req.Subtasks {
		t.AddSubtask(title)
	}
	return t, nil
}

// patchTaskRequest is the body of PATCH /api/tasks/{id}. Absent fields are
// left alone; an empty due_date or time_slot clears it.
type patchTaskRequest struct {
	Title           *string          `json:"title"`
	Priority        *string          `json:"priority"`
	Completed       *bool            `json:"completed"`
	DueDate         *string          `json:"due_date"`
	Color           *string          `json:"color"`
	Description     *string          `json:"description"`
	Tags            *[]string        `json:"tags"`
	TimeSlot        *string          `json:"time_slot"`
	DurationMinutes *int             `json:"duration_minutes"`
	Subtasks        *[]model.Subtask `json:"subtasks"`
}

func (req patchTaskRequest) toPatch(loc *time.Location) (store.Patch, error) {
	p := store.Patch{
		Title:       req.Title,
		Completed:   req.Completed,
		Description: req.Description,
		Tags:        req.Tags,
		TimeSlot:    req.TimeSlot,
		Subtasks:    req.Subtasks,
	}
	if req.Priority != nil {
		v, err := model.ParsePriority(*req.Priority)
		if err != nil {
			return p, err
		}
		p.Priority = &v
	}
	if req.Color != nil {
		v, err := model.ParseColor(*req.Color)
		if err != nil {
			return p, err
		}
		p.Color = &v
	}
	if req.DueDate != nil {
		var d time.Time
		if *req.DueDate != "" {
			var err error
			if d, err = parseDate(*req.DueDate, loc); err != nil {
				return p, err
			}
		}
		p.DueDate = &d
	}
	if req.DurationMinutes != nil {
		d := time.Duration(*req.DurationMinutes) * time.Minute
		p.Duration = &d
	}
	return p, nil
}

// handleListTasks serves the task panel and the search/filter panel.
//
// GET /api/tasks?q=&priority=&status=&tag=&range=&date=
//   - tag:   repeatable; every tag must be present
//   - range: today, week or month relative to date (default today)
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	f, err := s.parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tasks := s.store.Filter(f)
	appLog.Debug("api tasks request", "filters", f.Active(), "results", len(tasks))
	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

func (s *Server) parseFilter(r *http.Request) (store.Filter, error) {
	q := r.URL.Query()
	loc := s.location()

	f := store.Filter{Query: q.Get("q"), Tags: q["tag"]}

	if v := q.Get("priority"); v != "" {
		p, err := model.ParsePriority(v)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}

	status, err := store.ParseStatus(q.Get("status"))
	if err != nil {
		return f, err
	}
	f.Status = status

	if rng := strings.ToLower(strings.TrimSpace(q.Get("range"))); rng != "" && rng != "all" {
		ref := s.nav.Resolver().Today()
		if v := q.Get("date"); v != "" {
			if ref, err = parseDate(v, loc); err != nil {
				return f, err
			}
		}
		var g calendar.Granularity
		switch rng {
		case "today", "day":
			g = calendar.Day
		case "week":
			g = calendar.Week
		case "month":
			g = calendar.Month
		default:
			return f, errors.New("range must be today, week or month")
		}
		f.DueFrom, f.DueTo = s.nav.Resolver().Period(ref, g)
	}
	return f, nil
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t, err := req.toTask(s.location())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.store.Add(t)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	appLog.Info("task created", "id", created.ID, "title", created.Title)
	w.Header().Set("Location", "/api/tasks/"+created.ID)
	writeJSON(w, http.StatusCreated, toTaskDTO(created))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(t))
}

// handlePatchTask applies a partial update. The store ignores unknown ids,
// so the 404 is decided here.
func (s *Server) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Get(id); !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req patchTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := req.toPatch(s.location())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.store.Update(id, p); err != nil {
		writeStoreError(w, err)
		return
	}
	s.writeTask(w, id)
}

// moveRequest names the drop target either by slot id or by an instant,
// which is converted to the hour slot containing it (or its day slot when
// all_day is set).
type moveRequest struct {
	Slot   string `json:"slot"`
	At     string `json:"at"`
	AllDay bool   `json:"all_day"`
}

func (req moveRequest) slot(loc *time.Location) (string, error) {
	if req.At == "" {
		return req.Slot, nil
	}
	at, err := parseDate(req.At, loc)
	if err != nil {
		return "", err
	}
	at = at.In(loc)
	if req.AllDay {
		return calendar.DaySlot(at), nil
	}
	return calendar.HourSlot(at), nil
}

// handleMoveTask commits a drag-and-drop onto a calendar slot.
func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Get(id); !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	slot, err := req.slot(s.location())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.store.MoveToSlot(id, slot); err != nil {
		writeStoreError(w, err)
		return
	}
	s.writeTask(w, id)
}

var errSubtaskNotFound = errors.New("subtask not found")

// editTask applies fn to a copy of the task and saves the difference, the
// way the details modal commits its edits.
func (s *Server) editTask(w http.ResponseWriter, r *http.Request, fn func(t *model.Task) error) {
	id := chi.URLParam(r, "id")
	before, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	edited := before.Clone()
	if err := fn(&edited); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, errSubtaskNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	if p := store.Diff(before, edited); !p.Empty() {
		if err := s.store.Update(id, p); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	s.writeTask(w, id)
}

type subtaskRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleAddSubtask(w http.ResponseWriter, r *http.Request) {
	var req subtaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.editTask(w, r, func(t *model.Task) error {
		if _, ok := t.AddSubtask(req.Title); !ok {
			return errors.New("subtask title is required")
		}
		return nil
	})
}

func (s *Server) handleToggleSubtask(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	s.editTask(w, r, func(t *model.Task) error {
		if !t.ToggleSubtask(sid) {
			return errSubtaskNotFound
		}
		return nil
	})
}

func (s *Server) handleRemoveSubtask(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	s.editTask(w, r, func(t *model.Task) error {
		if !t.RemoveSubtask(sid) {
			return errSubtaskNotFound
		}
		return nil
	})
}

// handleRemoveTag drops a tag; removing an absent tag is not an error.
func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	s.editTask(w, r, func(t *model.Task) error {
		t.RemoveTag(tag)
		return nil
	})
}

func (s *Server) writeTask(w http.ResponseWriter, id string) {
	t, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(t))
}

// handleExportTask serves the "add to calendar" download.
func (s *Server) handleExportTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	body, err := ics.ExportTask(t, time.Now(), s.location())
	if err != nil {
		if errors.Is(err, ics.ErrNoSchedule) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		appLog.Error("task export failed", err, "id", t.ID)
		writeError(w, http.StatusInternalServerError, "failed to export task")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(t)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// exportFilename is "task-<id>-<title slug>.ics", ASCII only.
func exportFilename(t model.Task) string {
	name := "task-" + slug.Make(t.ID)
	if s := slug.Make(t.Title); s != "" {
		name += "-" + s
	}
	return name + ".ics"
}

func (s *Server) handleTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.AvailableTags())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, store.Summarize(s.store.GetAll()))
}
