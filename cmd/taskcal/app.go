package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"taskcal/internal/calendar"
	"taskcal/internal/config"
	"taskcal/internal/ics"
	appLog "taskcal/internal/log"
	"taskcal/internal/model"
	"taskcal/internal/render"
	"taskcal/internal/store"
)

// app wires the two core components to their event feed and renderer.
type app struct {
	store    *store.Store
	nav      *calendar.Navigator
	feed     *ics.Feed
	renderer *render.Renderer
}

// newApp builds the store and navigator from conf. view and date, when
// non-empty, override the configured initial view and today's date.
func newApp(conf *config.Config, view, date string) (*app, error) {
	loc, err := conf.Location()
	if err != nil {
		appLog.Warn("invalid timezone; using local", "timezone", conf.Timezone)
	}
	weekStart, err := calendar.ParseWeekStart(conf.WeekStart)
	if err != nil {
		return nil, err
	}
	res := calendar.NewResolver(weekStart, loc)

	if view == "" {
		view = conf.DefaultView
	}
	g, err := calendar.ParseGranularity(view)
	if err != nil {
		return nil, err
	}

	ref := res.Today()
	if date != "" {
		if ref, err = time.ParseInLocation("2006-01-02", date, loc); err != nil {
			return nil, fmt.Errorf("parse -date %q: %w", date, err)
		}
	}

	seed, err := loadTasks(conf, res.Today(), loc)
	if err != nil {
		return nil, err
	}
	st, err := store.New(seed)
	if err != nil {
		return nil, fmt.Errorf("seed store: %w", err)
	}
	st.Subscribe(func(snap store.Snapshot) {
		appLog.Debug("tasks changed", "version", snap.Version, "tasks", len(snap.Tasks))
	})

	feed := &ics.Feed{Resolver: res, Mock: conf.MockData}
	if conf.EventsFile != "" {
		parsed, err := ics.LoadFile(conf.EventsFile)
		if err != nil {
			return nil, fmt.Errorf("load events: %w", err)
		}
		feed.Parsed = parsed
		appLog.Info("events loaded", "path", conf.EventsFile, "vevents", len(parsed))
	}

	return &app{
		store:    st,
		nav:      calendar.NewNavigator(res, g, ref),
		feed:     feed,
		renderer: render.New(),
	}, nil
}

func loadTasks(conf *config.Config, now time.Time, loc *time.Location) ([]model.Task, error) {
	var seed []model.Task
	if conf.MockData {
		seed = append(seed, store.MockTasks(now)...)
	}
	if conf.TasksFile != "" {
		tasks, err := store.LoadSeedFile(conf.TasksFile, loc)
		if err != nil {
			return nil, fmt.Errorf("load tasks: %w", err)
		}
		appLog.Info("tasks loaded", "path", conf.TasksFile, "tasks", len(tasks))
		seed = append(seed, tasks...)
	}
	return seed, nil
}

// printView writes the current view next to the task panel.
func (a *app) printView(w io.Writer) error {
	ref := a.nav.Ref()
	g := a.nav.Granularity()
	res := a.nav.Resolver()

	start, end := res.Range(ref, g)
	tasks := a.store.GetAll()
	cells := res.Bucket(a.nav.Cells(), a.feed.Events(ref, start, end), tasks)

	frame := lipgloss.JoinHorizontal(lipgloss.Top,
		a.renderer.View(a.nav.Title(), g, cells),
		"  ",
		a.renderer.TaskPanel(tasks),
	)
	_, err := fmt.Fprintln(w, frame)
	return err
}
