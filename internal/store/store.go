// Package store implements the Schedule Store: persistent relational state
// for routines, steps, per-day step logs, dated custom tasks, day journals,
// and the chat transcript.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/scheduleragent/internal/model"
)

// Store wraps a SQLite connection implementing the Schedule Store.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at path and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx, letting CRUD helpers run
// either standalone or inside the single transaction the Action Dispatcher
// opens per apply() call.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is a single transactional scope on the Schedule Store. The Action
// Dispatcher opens exactly one of these per apply() call.
type Tx struct {
	tx *sql.Tx
}

// Begin opens a new transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback rolls back the transaction. Safe to call after Commit.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// ---- Routines ----

// CreateRoutine inserts a routine and assigns its ID.
func (s *Store) CreateRoutine(ctx context.Context, r *model.Routine) error { return createRoutine(ctx, s.db, r) }

// CreateRoutine within a transaction.
func (t *Tx) CreateRoutine(ctx context.Context, r *model.Routine) error { return createRoutine(ctx, t.tx, r) }

func createRoutine(ctx context.Context, q querier, r *model.Routine) error {
	res, err := q.ExecContext(ctx,
		`INSERT INTO routines (name, days, description) VALUES (?, ?, ?)`,
		r.Name, r.Days, r.Description)
	if err != nil {
		return fmt.Errorf("inserting routine: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// GetRoutine returns a routine by id, or nil if not found.
func (s *Store) GetRoutine(ctx context.Context, id int64) (*model.Routine, error) {
	return getRoutine(ctx, s.db, id)
}

func (t *Tx) GetRoutine(ctx context.Context, id int64) (*model.Routine, error) {
	return getRoutine(ctx, t.tx, id)
}

func getRoutine(ctx context.Context, q querier, id int64) (*model.Routine, error) {
	var r model.Routine
	err := q.QueryRowContext(ctx, `SELECT id, name, days, description FROM routines WHERE id = ?`, id).
		Scan(&r.ID, &r.Name, &r.Days, &r.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine: %w", err)
	}
	return &r, nil
}

// ListRoutines returns every routine, ordered by id.
func (s *Store) ListRoutines(ctx context.Context) ([]*model.Routine, error) {
	return listRoutines(ctx, s.db)
}

func (t *Tx) ListRoutines(ctx context.Context) ([]*model.Routine, error) {
	return listRoutines(ctx, t.tx)
}

func listRoutines(ctx context.Context, q querier) ([]*model.Routine, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, days, description FROM routines ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Routine
	for rows.Next() {
		var r model.Routine
		if err := rows.Scan(&r.ID, &r.Name, &r.Days, &r.Description); err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// UpdateRoutineDays updates a routine's days field.
func (t *Tx) UpdateRoutineDays(ctx context.Context, id int64, newDays string) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE routines SET days = ? WHERE id = ?`, newDays, id)
	if err != nil {
		return fmt.Errorf("updating routine days: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("routine %d not found", id)
	}
	return nil
}

// DeleteRoutine removes a routine; steps and their logs cascade.
func (t *Tx) DeleteRoutine(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM routines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("routine %d not found", id)
	}
	return nil
}

// DeleteAllRoutines removes every routine (and cascades steps/logs).
func (t *Tx) DeleteAllRoutines(ctx context.Context) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM routines`)
	if err != nil {
		return 0, fmt.Errorf("deleting all routines: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

// ---- Steps ----

// CreateStep inserts a step and assigns its ID.
func (t *Tx) CreateStep(ctx context.Context, st *model.Step) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO steps (routine_id, name, time, category, memo) VALUES (?, ?, ?, ?, ?)`,
		st.RoutineID, st.Name, st.Time, string(st.Category), st.Memo)
	if err != nil {
		return fmt.Errorf("inserting step: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	st.ID = id
	return nil
}

// GetStep returns a step by id, or nil if not found.
func (s *Store) GetStep(ctx context.Context, id int64) (*model.Step, error) { return getStep(ctx, s.db, id) }
func (t *Tx) GetStep(ctx context.Context, id int64) (*model.Step, error)    { return getStep(ctx, t.tx, id) }

func getStep(ctx context.Context, q querier, id int64) (*model.Step, error) {
	var st model.Step
	var cat string
	err := q.QueryRowContext(ctx, `SELECT id, routine_id, name, time, category, memo FROM steps WHERE id = ?`, id).
		Scan(&st.ID, &st.RoutineID, &st.Name, &st.Time, &cat, &st.Memo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying step: %w", err)
	}
	st.Category = model.Category(cat)
	return &st, nil
}

// ListStepsByRoutine returns a routine's steps, sorted by time.
func (s *Store) ListStepsByRoutine(ctx context.Context, routineID int64) ([]*model.Step, error) {
	return listStepsByRoutine(ctx, s.db, routineID)
}

func (t *Tx) ListStepsByRoutine(ctx context.Context, routineID int64) ([]*model.Step, error) {
	return listStepsByRoutine(ctx, t.tx, routineID)
}

func listStepsByRoutine(ctx context.Context, q querier, routineID int64) ([]*model.Step, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, routine_id, name, time, category, memo FROM steps WHERE routine_id = ? ORDER BY time`,
		routineID)
	if err != nil {
		return nil, fmt.Errorf("querying steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Step
	for rows.Next() {
		var st model.Step
		var cat string
		if err := rows.Scan(&st.ID, &st.RoutineID, &st.Name, &st.Time, &cat, &st.Memo); err != nil {
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		st.Category = model.Category(cat)
		out = append(out, &st)
	}
	return out, rows.Err()
}

// DeleteStep removes a step; its daily logs cascade.
func (t *Tx) DeleteStep(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM steps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting step: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("step %d not found", id)
	}
	return nil
}

// UpdateStepTime updates a step's scheduled time.
func (t *Tx) UpdateStepTime(ctx context.Context, id int64, newTime string) error {
	return t.execUpdate(ctx, `UPDATE steps SET time = ? WHERE id = ?`, "step", id, newTime, id)
}

// RenameStep updates a step's name.
func (t *Tx) RenameStep(ctx context.Context, id int64, newName string) error {
	return t.execUpdate(ctx, `UPDATE steps SET name = ? WHERE id = ?`, "step", id, newName, id)
}

// UpdateStepMemo updates a step's memo (empty string clears it).
func (t *Tx) UpdateStepMemo(ctx context.Context, id int64, newMemo string) error {
	return t.execUpdate(ctx, `UPDATE steps SET memo = ? WHERE id = ?`, "step", id, newMemo, id)
}

func (t *Tx) execUpdate(ctx context.Context, query, entity string, id int64, args ...any) error {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", entity, err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%s %d not found", entity, id)
	}
	return nil
}

// ---- DailyLogs ----

// UpsertDailyLog creates or updates a (date, step) completion log.
func (t *Tx) UpsertDailyLog(ctx context.Context, date string, stepID int64, done bool, memo string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO daily_logs (date, step_id, done, memo) VALUES (?, ?, ?, ?)
		ON CONFLICT(date, step_id) DO UPDATE SET done = excluded.done, memo = excluded.memo
	`, date, stepID, done, memo)
	if err != nil {
		return fmt.Errorf("upserting daily log: %w", err)
	}
	return nil
}

// GetDailyLog returns the log for (date, stepID), or nil if none exists.
func (s *Store) GetDailyLog(ctx context.Context, date string, stepID int64) (*model.DailyLog, error) {
	return getDailyLog(ctx, s.db, date, stepID)
}

func (t *Tx) GetDailyLog(ctx context.Context, date string, stepID int64) (*model.DailyLog, error) {
	return getDailyLog(ctx, t.tx, date, stepID)
}

func getDailyLog(ctx context.Context, q querier, date string, stepID int64) (*model.DailyLog, error) {
	var dl model.DailyLog
	err := q.QueryRowContext(ctx,
		`SELECT id, date, step_id, done, memo FROM daily_logs WHERE date = ? AND step_id = ?`,
		date, stepID).Scan(&dl.ID, &dl.Date, &dl.StepID, &dl.Done, &dl.Memo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying daily log: %w", err)
	}
	return &dl, nil
}

// ListDailyLogsByDate returns all step-completion logs for a date.
func (s *Store) ListDailyLogsByDate(ctx context.Context, date string) ([]*model.DailyLog, error) {
	return listDailyLogsByDate(ctx, s.db, date)
}

func (t *Tx) ListDailyLogsByDate(ctx context.Context, date string) ([]*model.DailyLog, error) {
	return listDailyLogsByDate(ctx, t.tx, date)
}

func listDailyLogsByDate(ctx context.Context, q querier, date string) ([]*model.DailyLog, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, date, step_id, done, memo FROM daily_logs WHERE date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("querying daily logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*model.DailyLog
	for rows.Next() {
		var dl model.DailyLog
		if err := rows.Scan(&dl.ID, &dl.Date, &dl.StepID, &dl.Done, &dl.Memo); err != nil {
			return nil, fmt.Errorf("scanning daily log: %w", err)
		}
		out = append(out, &dl)
	}
	return out, rows.Err()
}

// ---- CustomTasks ----

// CreateCustomTask inserts a custom task and assigns its ID.
func (t *Tx) CreateCustomTask(ctx context.Context, ct *model.CustomTask) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO custom_tasks (date, name, time, done, memo) VALUES (?, ?, ?, ?, ?)`,
		ct.Date, ct.Name, ct.Time, ct.Done, ct.Memo)
	if err != nil {
		return fmt.Errorf("inserting custom task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	ct.ID = id
	return nil
}

// GetCustomTask returns a custom task by id, or nil if not found.
func (s *Store) GetCustomTask(ctx context.Context, id int64) (*model.CustomTask, error) {
	return getCustomTask(ctx, s.db, id)
}

func (t *Tx) GetCustomTask(ctx context.Context, id int64) (*model.CustomTask, error) {
	return getCustomTask(ctx, t.tx, id)
}

func getCustomTask(ctx context.Context, q querier, id int64) (*model.CustomTask, error) {
	var ct model.CustomTask
	err := q.QueryRowContext(ctx,
		`SELECT id, date, name, time, done, memo FROM custom_tasks WHERE id = ?`, id).
		Scan(&ct.ID, &ct.Date, &ct.Name, &ct.Time, &ct.Done, &ct.Memo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying custom task: %w", err)
	}
	return &ct, nil
}

// ListCustomTasksByDate returns a date's custom tasks, sorted by time.
func (s *Store) ListCustomTasksByDate(ctx context.Context, date string) ([]*model.CustomTask, error) {
	return listCustomTasksByDate(ctx, s.db, date)
}

func (t *Tx) ListCustomTasksByDate(ctx context.Context, date string) ([]*model.CustomTask, error) {
	return listCustomTasksByDate(ctx, t.tx, date)
}

func listCustomTasksByDate(ctx context.Context, q querier, date string) ([]*model.CustomTask, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, date, name, time, done, memo FROM custom_tasks WHERE date = ? ORDER BY time`, date)
	if err != nil {
		return nil, fmt.Errorf("querying custom tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanCustomTasks(rows)
}

// ListCustomTasksByDateRange returns custom tasks in [start,end], sorted by date then time.
func (s *Store) ListCustomTasksByDateRange(ctx context.Context, start, end string) ([]*model.CustomTask, error) {
	return listCustomTasksByDateRange(ctx, s.db, start, end)
}

func (t *Tx) ListCustomTasksByDateRange(ctx context.Context, start, end string) ([]*model.CustomTask, error) {
	return listCustomTasksByDateRange(ctx, t.tx, start, end)
}

func listCustomTasksByDateRange(ctx context.Context, q querier, start, end string) ([]*model.CustomTask, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, date, name, time, done, memo FROM custom_tasks WHERE date >= ? AND date <= ? ORDER BY date, time`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("querying custom tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanCustomTasks(rows)
}

func scanCustomTasks(rows *sql.Rows) ([]*model.CustomTask, error) {
	var out []*model.CustomTask
	for rows.Next() {
		var ct model.CustomTask
		if err := rows.Scan(&ct.ID, &ct.Date, &ct.Name, &ct.Time, &ct.Done, &ct.Memo); err != nil {
			return nil, fmt.Errorf("scanning custom task: %w", err)
		}
		out = append(out, &ct)
	}
	return out, rows.Err()
}

// DeleteCustomTask removes a custom task by id.
func (t *Tx) DeleteCustomTask(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM custom_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting custom task: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("custom task %d not found", id)
	}
	return nil
}

// UpdateCustomTaskDoneMemo updates a custom task's done flag and memo.
func (t *Tx) UpdateCustomTaskDoneMemo(ctx context.Context, id int64, done bool, memo string) error {
	return t.execUpdate(ctx, `UPDATE custom_tasks SET done = ?, memo = ? WHERE id = ?`, "custom task", id, done, memo, id)
}

// UpdateCustomTaskTime updates a custom task's scheduled time.
func (t *Tx) UpdateCustomTaskTime(ctx context.Context, id int64, newTime string) error {
	return t.execUpdate(ctx, `UPDATE custom_tasks SET time = ? WHERE id = ?`, "custom task", id, newTime, id)
}

// RenameCustomTask updates a custom task's name.
func (t *Tx) RenameCustomTask(ctx context.Context, id int64, newName string) error {
	return t.execUpdate(ctx, `UPDATE custom_tasks SET name = ? WHERE id = ?`, "custom task", id, newName, id)
}

// UpdateCustomTaskMemo updates a custom task's memo (empty string clears it).
func (t *Tx) UpdateCustomTaskMemo(ctx context.Context, id int64, newMemo string) error {
	return t.execUpdate(ctx, `UPDATE custom_tasks SET memo = ? WHERE id = ?`, "custom task", id, newMemo, id)
}

// ---- DayLog ----

// GetDayLog returns the day log for a date, or nil if none exists.
func (s *Store) GetDayLog(ctx context.Context, date string) (*model.DayLog, error) {
	return getDayLog(ctx, s.db, date)
}

func (t *Tx) GetDayLog(ctx context.Context, date string) (*model.DayLog, error) {
	return getDayLog(ctx, t.tx, date)
}

func getDayLog(ctx context.Context, q querier, date string) (*model.DayLog, error) {
	var dl model.DayLog
	err := q.QueryRowContext(ctx, `SELECT id, date, content FROM day_logs WHERE date = ?`, date).
		Scan(&dl.ID, &dl.Date, &dl.Content)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying day log: %w", err)
	}
	return &dl, nil
}

// UpsertDayLog overwrites (or creates) the day log content for a date.
func (t *Tx) UpsertDayLog(ctx context.Context, date, content string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO day_logs (date, content) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET content = excluded.content
	`, date, content)
	if err != nil {
		return fmt.Errorf("upserting day log: %w", err)
	}
	return nil
}

// AppendDayLog appends content to the day log for a date, newline-separated,
// creating it if it doesn't yet exist.
func (t *Tx) AppendDayLog(ctx context.Context, date, content string) error {
	existing, err := t.GetDayLog(ctx, date)
	if err != nil {
		return err
	}
	merged := content
	if existing != nil && existing.Content != "" {
		merged = existing.Content + "\n" + content
	}
	return t.UpsertDayLog(ctx, date, merged)
}

// RecentDayLogs returns day logs for the given dates (in the order given)
// whose content is non-empty.
func (s *Store) RecentDayLogs(ctx context.Context, dates []string) ([]*model.DayLog, error) {
	var out []*model.DayLog
	for _, d := range dates {
		dl, err := s.GetDayLog(ctx, d)
		if err != nil {
			return nil, err
		}
		if dl != nil && dl.Content != "" {
			out = append(out, dl)
		}
	}
	return out, nil
}

// ---- ChatHistory ----

// AppendChatHistory appends one transcript entry and assigns its ID.
func (s *Store) AppendChatHistory(ctx context.Context, h *model.ChatHistory) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (role, content, timestamp) VALUES (?, ?, ?)`,
		string(h.Role), h.Content, h.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting chat history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	h.ID = id
	return nil
}

// RecentChatHistory returns the last n entries, oldest first.
func (s *Store) RecentChatHistory(ctx context.Context, n int) ([]*model.ChatHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, timestamp FROM chat_history ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying chat history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*model.ChatHistory
	for rows.Next() {
		var h model.ChatHistory
		var role string
		if err := rows.Scan(&h.ID, &role, &h.Content, &h.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning chat history: %w", err)
		}
		h.Role = model.ChatRole(role)
		out = append(out, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat history: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ClearChatHistory deletes every stored transcript entry.
func (s *Store) ClearChatHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_history`); err != nil {
		return fmt.Errorf("clearing chat history: %w", err)
	}
	return nil
}
