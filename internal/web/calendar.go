package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskcal/internal/calendar"
	"taskcal/internal/model"
)

type eventDTO struct {
	SourceID    string          `json:"source_id"`
	UID         string          `json:"uid"`
	InstanceKey string          `json:"instance_key"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Location    string          `json:"location,omitempty"`
	Color       model.Color     `json:"color"`
	Kind        model.EventKind `json:"kind"`
	AllDay      bool            `json:"all_day"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`

	// Offset and Span are in cell units.
	Offset float64 `json:"offset"`
	Span   float64 `json:"span"`
}

type cellDTO struct {
	Slot     string     `json:"slot"`
	Kind     string     `json:"kind"`
	Start    time.Time  `json:"start"`
	End      time.Time  `json:"end"`
	InPeriod bool       `json:"in_period"`
	Today    bool       `json:"today"`
	Selected bool       `json:"selected"`
	Events   []eventDTO `json:"events"`
	Tasks    []taskDTO  `json:"tasks"`
}

func toCellDTO(c calendar.Cell) cellDTO {
	kind := "day"
	if c.Kind == calendar.HourCell {
		kind = "hour"
	}
	dto := cellDTO{
		Slot:     c.SlotID(),
		Kind:     kind,
		Start:    c.Start,
		End:      c.End,
		InPeriod: c.InPeriod,
		Today:    c.Today,
		Selected: c.Selected,
		Events:   make([]eventDTO, 0, len(c.Events)),
		Tasks:    toTaskDTOs(c.Tasks),
	}
	for _, p := range c.Events {
		ev := p.Event
		dto.Events = append(dto.Events, eventDTO{
			SourceID:    ev.SourceID,
			UID:         ev.UID,
			InstanceKey: ev.InstanceKey,
			Title:       ev.Title,
			Description: ev.Description,
			Location:    ev.Location,
			Color:       ev.Color,
			Kind:        ev.Kind,
			AllDay:      ev.AllDay,
			Start:       ev.Start,
			End:         ev.End(),
			Offset:      p.Offset,
			Span:        p.Span,
		})
	}
	return dto
}

func toCellDTOs(cells []calendar.Cell) []cellDTO {
	out := make([]cellDTO, 0, len(cells))
	for _, c := range cells {
		out = append(out, toCellDTO(c))
	}
	return out
}

// calendarResponse is the JSON response shape for /api/calendar.
type calendarResponse struct {
	View       string    `json:"view"`
	Title      string    `json:"title"`
	Date       string    `json:"date"`
	WeekStart  string    `json:"week_start"`
	RangeStart time.Time `json:"range_start"`
	RangeEnd   time.Time `json:"range_end"`
	Cells      []cellDTO `json:"cells"`

	// Columns is the week-with-time grid: 7 days of 24 hour cells.
	Columns [][]cellDTO `json:"columns,omitempty"`
}

// navState is the navigator as seen by the header and sidebar.
type navState struct {
	View     string     `json:"view"`
	Date     string     `json:"date"`
	Title    string     `json:"title"`
	Selected *time.Time `json:"selected,omitempty"`
}

func (s *Server) navStateLocked() navState {
	st := navState{
		View:  s.nav.Granularity().String(),
		Date:  s.nav.Ref().Format("2006-01-02"),
		Title: s.nav.Title(),
	}
	if sel, ok := s.nav.Selected(); ok {
		st.Selected = &sel
	}
	return st
}

// handleCalendar resolves and buckets one view.
//
// GET /api/calendar?view=month&date=2024-12-15&selected=2024-12-16&hours=1
//   - view, date, selected: override the navigator for this request only
//   - hours:                with view=week, also return the hour grid
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := s.location()

	s.navMu.Lock()
	ref := s.nav.Ref()
	view := s.nav.Granularity()
	var selected *time.Time
	if sel, ok := s.nav.Selected(); ok {
		selected = &sel
	}
	s.navMu.Unlock()

	if v := q.Get("view"); v != "" {
		g, err := calendar.ParseGranularity(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		view = g
	}
	if v := q.Get("date"); v != "" {
		d, err := parseDate(v, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date: "+err.Error())
			return
		}
		ref = d
	}
	if v := q.Get("selected"); v != "" {
		d, err := parseDate(v, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "selected: "+err.Error())
			return
		}
		selected = &d
	}
	hours, _ := strconv.ParseBool(q.Get("hours"))

	res := s.nav.Resolver()
	start, end := res.Range(ref, view)
	var events []model.Event
	if s.events != nil {
		events = s.events.Events(ref, start, end)
	}
	tasks := s.store.GetAll()

	resp := calendarResponse{
		View:       view.String(),
		Title:      calendar.Title(ref, view),
		Date:       ref.Format("2006-01-02"),
		WeekStart:  strings.ToLower(res.WeekStart.String()),
		RangeStart: start,
		RangeEnd:   end,
		Cells:      toCellDTOs(res.Bucket(res.Cells(ref, view, selected), events, tasks)),
	}
	if hours && view == calendar.Week {
		for _, col := range res.WeekHours(ref, selected) {
			resp.Columns = append(resp.Columns, toCellDTOs(res.Bucket(col, events, tasks)))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type navigateRequest struct {
	// Dir is next, prev or today; empty leaves the date alone.
	Dir  string `json:"dir"`
	View string `json:"view"`
	Date string `json:"date"`

	// Selected sets the selection; an empty string clears it.
	Selected *string `json:"selected"`
}

// handleNavigate mutates the shared navigator and returns its new state.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	loc := s.location()

	var (
		view     calendar.Granularity
		ref, sel time.Time
		err      error
	)
	if req.View != "" {
		if view, err = calendar.ParseGranularity(req.View); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Date != "" {
		if ref, err = parseDate(req.Date, loc); err != nil {
			writeError(w, http.StatusBadRequest, "date: "+err.Error())
			return
		}
	}
	if req.Selected != nil && *req.Selected != "" {
		if sel, err = parseDate(*req.Selected, loc); err != nil {
			writeError(w, http.StatusBadRequest, "selected: "+err.Error())
			return
		}
	}

	move, err := parseMove(req.Dir)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.navMu.Lock()
	defer s.navMu.Unlock()

	s.nav.SetGranularity(view)
	if !ref.IsZero() {
		s.nav.SetRef(ref)
	}
	if move != nil {
		move(s.nav)
	}
	if req.Selected != nil {
		if sel.IsZero() {
			s.nav.ClearSelection()
		} else {
			s.nav.Select(sel)
		}
	}

	writeJSON(w, http.StatusOK, s.navStateLocked())
}

func parseMove(dir string) (func(*calendar.Navigator), error) {
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "":
		return nil, nil
	case "today":
		return func(n *calendar.Navigator) { n.Today() }, nil
	}
	d, err := calendar.ParseDirection(dir)
	if err != nil {
		return nil, errors.New("dir must be next, prev or today")
	}
	if d == calendar.Next {
		return func(n *calendar.Navigator) { n.Next() }, nil
	}
	return func(n *calendar.Navigator) { n.Prev() }, nil
}
