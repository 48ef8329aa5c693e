package ui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/task"
)

type gatewayMock struct {
	mock.Mock
}

func (g *gatewayMock) Login(ctx context.Context, username, password string) (string, error) {
	args := g.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (g *gatewayMock) ListTasks(ctx context.Context) ([]task.Task, error) {
	args := g.Called(ctx)

	var tasks []task.Task
	if value := args.Get(0); value != nil {
		tasks = value.([]task.Task)
	}
	return tasks, args.Error(1)
}

func (g *gatewayMock) CreateTask(ctx context.Context, draft task.Draft) (task.Task, error) {
	args := g.Called(ctx, draft)

	var created task.Task
	if value := args.Get(0); value != nil {
		created = value.(task.Task)
	}
	return created, args.Error(1)
}

func (g *gatewayMock) ToggleTask(ctx context.Context, id string) (task.Task, error) {
	args := g.Called(ctx, id)

	var updated task.Task
	if value := args.Get(0); value != nil {
		updated = value.(task.Task)
	}
	return updated, args.Error(1)
}

func (g *gatewayMock) DeleteTask(ctx context.Context, id string) error {
	return g.Called(ctx, id).Error(0)
}

func (g *gatewayMock) SetToken(token string) {
	g.Called(token)
}

type storeMock struct {
	mock.Mock
}

func (s *storeMock) SaveToken(token string) error {
	return s.Called(token).Error(0)
}

func (s *storeMock) ClearToken() error {
	return s.Called().Error(0)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.LoadOrCreate(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	return cfg
}

func testTasks() []task.Task {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []task.Task{
		{ID: "a", Title: "A", CreatedAt: base.Add(2 * time.Hour), Owner: "u1"},
		{ID: "b", Title: "B", CreatedAt: base.Add(time.Hour), Owner: "u1"},
		{ID: "c", Title: "C", CreatedAt: base, Owner: "u1"},
	}
}

func newTestModel(t *testing.T, gw *gatewayMock, tasks []task.Task) Model {
	t.Helper()
	gw.On("SetToken", "tok").Return().Once()
	m := NewModel(gw, &storeMock{}, testConfig(t), "tok")
	m.loading = false
	m.tasks = tasks
	return m
}

func ids(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func keyMsg(key string) tea.KeyMsg {
	if key == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func asModel(t *testing.T, tm tea.Model) Model {
	t.Helper()
	m, ok := tm.(Model)
	require.True(t, ok)
	return m
}

func TestToggle_OptimisticFlipThenRollbackOnFailure(t *testing.T) {
	gw := new(gatewayMock)
	gw.On("ToggleTask", mock.Anything, "a").
		Return(nil, &api.Error{Kind: api.KindNetwork, Op: "toggle"}).Once()
	m := newTestModel(t, gw, testTasks())

	// Default sort is newest-first, so cursor 0 is task "a".
	tm, cmd := m.Update(keyMsg(" "))
	m = asModel(t, tm)
	require.NotNil(t, cmd)

	got, _ := task.Find(m.tasks, "a")
	require.True(t, got.Completed, "optimistic flip should be visible immediately")

	tm, _ = m.Update(cmd())
	m = asModel(t, tm)

	got, _ = task.Find(m.tasks, "a")
	require.False(t, got.Completed, "failure must restore the exact pre-optimistic value")
	require.Equal(t, noticeError, m.note.kind)
	gw.AssertExpectations(t)
}

func TestToggle_ServerValueWinsOnSuccess(t *testing.T) {
	updated := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	gw := new(gatewayMock)
	gw.On("ToggleTask", mock.Anything, "a").
		Return(task.Task{ID: "a", Title: "A", Completed: true, UpdatedAt: updated}, nil).Once()
	m := newTestModel(t, gw, testTasks())

	tm, cmd := m.Update(keyMsg(" "))
	m = asModel(t, tm)
	tm, _ = m.Update(cmd())
	m = asModel(t, tm)

	got, _ := task.Find(m.tasks, "a")
	require.True(t, got.Completed)
	require.Equal(t, updated, got.UpdatedAt)
	gw.AssertExpectations(t)
}

func TestToggle_LastVisibleUnderFilterReclampsCursor(t *testing.T) {
	gw := new(gatewayMock)
	gw.On("ToggleTask", mock.Anything, "c").
		Return(task.Task{ID: "c", Title: "C", Completed: true}, nil).Once()
	gw.On("ToggleTask", mock.Anything, "b").
		Return(task.Task{ID: "b", Title: "B", Completed: true}, nil).Once()
	m := newTestModel(t, gw, testTasks())
	m.query.Filter = task.FilterIncomplete
	m.cursor = 2 // "c", last visible under newest-first

	// The optimistic flip drops "c" out of the incomplete view; the cursor
	// must follow the shrunken list instead of pointing past it.
	tm, cmd := m.Update(keyMsg(" "))
	m = asModel(t, tm)
	require.NotNil(t, cmd)
	require.Len(t, m.visible(), 2)
	require.Equal(t, 1, m.cursor)
	tm, _ = m.Update(cmd())
	m = asModel(t, tm)

	// Further keypresses act on the clamped position without panicking.
	tm, _ = m.Update(keyMsg("d"))
	m = asModel(t, tm)
	require.True(t, m.confirmDel)
	require.Equal(t, "b", m.pendingDel.ID)

	tm, _ = m.Update(keyMsg("n"))
	m = asModel(t, tm)
	tm, cmd = m.Update(keyMsg(" "))
	m = asModel(t, tm)
	require.NotNil(t, cmd)
	tm, _ = m.Update(cmd())
	m = asModel(t, tm)

	got, _ := task.Find(m.tasks, "b")
	require.True(t, got.Completed)
	gw.AssertExpectations(t)
}

func TestToggle_LateResponseForRemovedTaskNoOps(t *testing.T) {
	gw := new(gatewayMock)
	m := newTestModel(t, gw, testTasks())

	before := ids(m.tasks)
	tm, _ := m.Update(taskToggledMsg{id: "gone", prev: false, err: &api.Error{Kind: api.KindNetwork, Op: "toggle"}})
	m = asModel(t, tm)
	require.Equal(t, before, ids(m.tasks))

	tm, _ = m.Update(taskToggledMsg{id: "gone", task: task.Task{ID: "gone", Completed: true}})
	m = asModel(t, tm)
	require.Equal(t, before, ids(m.tasks))
}

func TestDelete_ConfirmedSuccessRemovesWithoutReordering(t *testing.T) {
	gw := new(gatewayMock)
	gw.On("DeleteTask", mock.Anything, "b").Return(nil).Once()
	m := newTestModel(t, gw, testTasks())
	m.cursor = 1 // "b" under newest-first

	tm, _ := m.Update(keyMsg("d"))
	m = asModel(t, tm)
	require.True(t, m.confirmDel)
	require.Equal(t, ids(testTasks()), ids(m.tasks), "nothing removed before confirmation")

	tm, cmd := m.Update(keyMsg("y"))
	m = asModel(t, tm)
	require.NotNil(t, cmd)
	require.Equal(t, ids(testTasks()), ids(m.tasks), "nothing removed before server confirmation")

	tm, _ = m.Update(cmd())
	m = asModel(t, tm)
	require.Equal(t, []string{"a", "c"}, ids(m.tasks))
	require.Equal(t, noticeSuccess, m.note.kind)
	gw.AssertExpectations(t)
}

func TestDelete_CancelHasNoSideEffects(t *testing.T) {
	gw := new(gatewayMock)
	m := newTestModel(t, gw, testTasks())

	tm, _ := m.Update(keyMsg("d"))
	m = asModel(t, tm)
	tm, cmd := m.Update(keyMsg("n"))
	m = asModel(t, tm)

	require.Nil(t, cmd)
	require.False(t, m.confirmDel)
	require.Equal(t, ids(testTasks()), ids(m.tasks))
	gw.AssertNotCalled(t, "DeleteTask", mock.Anything, mock.Anything)
}

func TestDelete_FailureLeavesCollectionUntouched(t *testing.T) {
	gw := new(gatewayMock)
	gw.On("DeleteTask", mock.Anything, "a").
		Return(&api.Error{Kind: api.KindServer, Op: "delete"}).Once()
	m := newTestModel(t, gw, testTasks())

	tm, _ := m.Update(keyMsg("d"))
	m = asModel(t, tm)
	tm, cmd := m.Update(keyMsg("y"))
	m = asModel(t, tm)
	tm, _ = m.Update(cmd())
	m = asModel(t, tm)

	require.Equal(t, ids(testTasks()), ids(m.tasks))
	require.Equal(t, noticeError, m.note.kind)
	gw.AssertExpectations(t)
}

func TestCreate_PrependsRegardlessOfSort(t *testing.T) {
	gw := new(gatewayMock)
	m := newTestModel(t, gw, testTasks())
	m.query.Sort = task.SortDueAsc

	created := task.Task{ID: "z", Title: "Z", CreatedAt: time.Now().UTC(), Owner: "u1"}
	tm, _ := m.Update(taskCreatedMsg{task: created})
	m = asModel(t, tm)

	require.Equal(t, []string{"z", "a", "b", "c"}, ids(m.tasks), "canonical order prepends at the head")
	require.Equal(t, noticeSuccess, m.note.kind)
}

func TestCreate_EmptyTitleRejectedBeforeNetwork(t *testing.T) {
	gw := new(gatewayMock)
	m := newTestModel(t, gw, testTasks())
	m.mode = modeAdd
	m.add = &addState{title: "   ", index: len(addFields()) - 1}

	tm, cmd := m.submitAdd()
	m = asModel(t, tm)

	require.Nil(t, cmd)
	require.Equal(t, noticeError, m.note.kind)
	gw.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
}

func TestCreate_FailureKeepsInputs(t *testing.T) {
	gw := new(gatewayMock)
	m := newTestModel(t, gw, testTasks())
	m.mode = modeAdd
	m.add = &addState{title: "keep me", description: "still here"}

	tm, _ := m.Update(taskCreatedMsg{err: &api.Error{Kind: api.KindServer, Op: "create"}})
	m = asModel(t, tm)

	require.Equal(t, modeAdd, m.mode)
	require.NotNil(t, m.add)
	require.Equal(t, "keep me", m.add.title)
	require.Equal(t, ids(testTasks()), ids(m.tasks))
}

func TestRefresh_FailurePreservesPriorCollection(t *testing.T) {
	gw := new(gatewayMock)
	m := newTestModel(t, gw, testTasks())

	tm, _ := m.Update(tasksLoadedMsg{err: &api.Error{Kind: api.KindNetwork, Op: "list"}})
	m = asModel(t, tm)

	require.Equal(t, ids(testTasks()), ids(m.tasks))
	require.Equal(t, noticeError, m.note.kind)
}

func TestRefresh_ReplacesCollectionWholesale(t *testing.T) {
	gw := new(gatewayMock)
	m := newTestModel(t, gw, testTasks())

	replacement := []task.Task{{ID: "x", Title: "X", Owner: "u1"}}
	tm, _ := m.Update(tasksLoadedMsg{tasks: replacement})
	m = asModel(t, tm)

	require.Equal(t, []string{"x"}, ids(m.tasks))
}

func TestLogin_SuccessStoresTokenAndLoadsTasks(t *testing.T) {
	gw := new(gatewayMock)
	store := new(storeMock)
	store.On("SaveToken", "tok-1").Return(nil).Once()
	m := NewModel(gw, store, testConfig(t), "")
	require.Equal(t, screenLogin, m.screen)

	tm, cmd := m.Update(loginFinishedMsg{token: "tok-1"})
	m = asModel(t, tm)

	require.Equal(t, screenTasks, m.screen)
	require.True(t, m.loading)
	require.NotNil(t, cmd)
	store.AssertExpectations(t)
}

func TestLogin_FailureStaysOnLoginScreen(t *testing.T) {
	gw := new(gatewayMock)
	store := new(storeMock)
	m := NewModel(gw, store, testConfig(t), "")

	tm, _ := m.Update(loginFinishedMsg{err: &api.Error{Kind: api.KindAuth, Op: "login"}})
	m = asModel(t, tm)

	require.Equal(t, screenLogin, m.screen)
	require.Equal(t, noticeError, m.note.kind)
	store.AssertNotCalled(t, "SaveToken", mock.Anything)
}
