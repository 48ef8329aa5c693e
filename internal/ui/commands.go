package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/task"
)

// Gateway is the remote boundary the model mutates tasks through. api.Client
// implements it; tests substitute a mock.
type Gateway interface {
	Login(ctx context.Context, username, password string) (string, error)
	ListTasks(ctx context.Context) ([]task.Task, error)
	CreateTask(ctx context.Context, draft task.Draft) (task.Task, error)
	ToggleTask(ctx context.Context, id string) (task.Task, error)
	DeleteTask(ctx context.Context, id string) error
	SetToken(token string)
}

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	SaveToken(token string) error
	ClearToken() error
}

type loginFinishedMsg struct {
	token string
	err   error
}

type tasksLoadedMsg struct {
	tasks []task.Task
	err   error
}

// taskToggledMsg carries the pre-optimistic value so a failure can restore
// exactly the state the user saw before pressing toggle.
type taskToggledMsg struct {
	id   string
	prev bool
	task task.Task
	err  error
}

type taskDeletedMsg struct {
	id    string
	title string
	err   error
}

type taskCreatedMsg struct {
	task task.Task
	err  error
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	gw, timeout := m.gw, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		token, err := gw.Login(ctx, username, password)
		return loginFinishedMsg{token: token, err: err}
	}
}

func (m Model) loadTasksCmd() tea.Cmd {
	gw, timeout := m.gw, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		tasks, err := gw.ListTasks(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m Model) toggleCmd(id string, prev bool) tea.Cmd {
	gw, timeout := m.gw, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		updated, err := gw.ToggleTask(ctx, id)
		return taskToggledMsg{id: id, prev: prev, task: updated, err: err}
	}
}

func (m Model) deleteCmd(id, title string) tea.Cmd {
	gw, timeout := m.gw, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := gw.DeleteTask(ctx, id)
		return taskDeletedMsg{id: id, title: title, err: err}
	}
}

func (m Model) createCmd(draft task.Draft) tea.Cmd {
	gw, timeout := m.gw, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		created, err := gw.CreateTask(ctx, draft)
		return taskCreatedMsg{task: created, err: err}
	}
}

func defaultTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(seconds) * time.Second
}
