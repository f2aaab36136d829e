// Package ui implements the interactive stdin menu for managing tasks.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"remindd/internal/task"
	logx "remindd/pkg/logx"
)

// DeadlineLayout is the input and display format for deadlines, local time.
const DeadlineLayout = "2006-01-02 15:04"

// Saver flushes the task set after every menu mutation.
type Saver interface {
	SaveAll(ctx context.Context, tasks []task.Task) error
}

type Menu struct {
	store *task.Store
	saver Saver
	log   logx.Logger

	in  *bufio.Scanner
	out io.Writer
}

func NewMenu(store *task.Store, saver Saver, log logx.Logger, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		store: store,
		saver: saver,
		log:   log,
		in:    bufio.NewScanner(in),
		out:   out,
	}
}

// Run drives the menu until the user exits or input ends. The scheduler
// keeps running in the background the whole time; the menu talks to it
// only through the task store.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, "=== Personal Task Reminder ===")
		fmt.Fprintln(m.out, "1) View tasks")
		fmt.Fprintln(m.out, "2) Add task")
		fmt.Fprintln(m.out, "3) Delete task")
		fmt.Fprintln(m.out, "4) Save & Exit")
		fmt.Fprint(m.out, "Choice: ")

		line, ok := m.readLine()
		if !ok {
			return nil
		}
		switch strings.TrimSpace(line) {
		case "1":
			m.viewTasks()
		case "2":
			m.addTask(ctx)
		case "3":
			m.deleteTask(ctx)
		case "4":
			m.flush(ctx)
			fmt.Fprintln(m.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid.")
		}
	}
}

func (m *Menu) viewTasks() {
	tasks := m.store.List()
	if len(tasks) == 0 {
		fmt.Fprintln(m.out, "No tasks.")
		return
	}
	fmt.Fprintln(m.out, "ID | Deadline           | Pri | Category   | Title")
	fmt.Fprintln(m.out, "--------------------------------------------------------------")
	for _, t := range tasks {
		fmt.Fprintf(m.out, "%2d | %s |  %d  | %-10s | %s\n",
			t.ID, t.Deadline.Format(DeadlineLayout), t.Priority, t.Category, t.Title)
	}
}

func (m *Menu) addTask(ctx context.Context) {
	title, ok := m.prompt("Title: ")
	if !ok || title == "" {
		return
	}
	category, ok := m.prompt("Category (Work/Study/Personal): ")
	if !ok {
		return
	}
	prioStr, ok := m.prompt("Priority (1-5): ")
	if !ok {
		return
	}
	priority, err := strconv.Atoi(strings.TrimSpace(prioStr))
	if err != nil {
		fmt.Fprintln(m.out, "Invalid priority.")
		return
	}
	timeStr, ok := m.prompt("Deadline (YYYY-MM-DD HH:MM): ")
	if !ok {
		return
	}
	deadline, err := time.ParseInLocation(DeadlineLayout, strings.TrimSpace(timeStr), time.Local)
	if err != nil {
		fmt.Fprintln(m.out, "Invalid time.")
		return
	}

	t, err := m.store.Add(title, category, priority, deadline)
	if err != nil {
		if errors.Is(err, task.ErrCapacity) {
			fmt.Fprintln(m.out, "Max tasks reached.")
		} else {
			fmt.Fprintf(m.out, "Add failed: %v\n", err)
		}
		return
	}
	m.flush(ctx)
	m.log.Info("task added", logx.Int64("id", t.ID), logx.Time("deadline", t.Deadline))
	fmt.Fprintf(m.out, "Task '%s' added.\n", t.Title)
}

func (m *Menu) deleteTask(ctx context.Context) {
	idStr, ok := m.prompt("Enter id to delete: ")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
	if err != nil {
		fmt.Fprintln(m.out, "Invalid id.")
		return
	}
	if !m.store.Delete(id) {
		m.log.Debug("delete rejected", logx.Int64("id", id), logx.Err(task.ErrNotFound))
		fmt.Fprintln(m.out, "Not found.")
		return
	}
	m.flush(ctx)
	m.log.Info("task deleted", logx.Int64("id", id))
	fmt.Fprintf(m.out, "Task %d deleted.\n", id)
}

// flush persists the current task set; failures are reported but the
// in-memory store stays authoritative.
func (m *Menu) flush(ctx context.Context) {
	if m.saver == nil {
		return
	}
	if err := m.saver.SaveAll(ctx, m.store.List()); err != nil {
		m.log.Warn("task flush failed", logx.Err(err))
		fmt.Fprintf(m.out, "Warning: saving tasks failed: %v\n", err)
	}
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	return m.readLine()
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}
