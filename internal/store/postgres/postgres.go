package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users                 { return &users{db: s.db} }
func (s *pgStore) Tasks() store.Tasks                 { return &tasks{db: s.db} }
func (s *pgStore) Conversations() store.Conversations { return &conversations{db: s.db} }
func (s *pgStore) Messages() store.Messages           { return &messages{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Ensure(ctx context.Context, m *model.User) (*model.User, error) {
	// ON CONFLICT DO NOTHING keeps concurrent first-contact turns safe:
	// "already exists" is success, never an error.
	if _, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, display_name)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id) DO NOTHING
    `, m.UserID, m.Email, m.DisplayName); err != nil {
		return nil, err
	}
	return u.Get(ctx, m.UserID)
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, creation_time
        FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, model.ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

// --- Tasks ---

type tasks struct{ db *sql.DB }

func (t *tasks) Create(ctx context.Context, m *model.Task) (*model.Task, error) {
	out := *m
	row := t.db.QueryRowContext(ctx, `
        INSERT INTO tasks (user_id, title, description)
        VALUES ($1,$2,$3)
        RETURNING task_id, completed, creation_time, update_time
    `, m.UserID, m.Title, m.Description)
	if err := row.Scan(&out.TaskID, &out.Completed, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *tasks) GetByID(ctx context.Context, userID string, taskID int64) (*model.Task, error) {
	var out model.Task
	row := t.db.QueryRowContext(ctx, `
        SELECT task_id, user_id, title, description, completed, creation_time, update_time
        FROM tasks WHERE user_id=$1 AND task_id=$2
    `, userID, taskID)
	if err := row.Scan(&out.TaskID, &out.UserID, &out.Title, &out.Description, &out.Completed, &out.CreationTime, &out.UpdateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", taskID, model.ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

func (t *tasks) List(ctx context.Context, req model.ListTasksRequest) ([]*model.Task, error) {
	query := `SELECT task_id, user_id, title, description, completed, creation_time, update_time
              FROM tasks WHERE user_id=$1`
	switch req.Filter {
	case model.FilterPending:
		query += " AND completed=FALSE"
	case model.FilterCompleted:
		query += " AND completed=TRUE"
	}
	query += " ORDER BY task_id"

	rows, err := t.db.QueryContext(ctx, query, req.UserID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Task
	for rows.Next() {
		var m model.Task
		if err := rows.Scan(&m.TaskID, &m.UserID, &m.Title, &m.Description, &m.Completed, &m.CreationTime, &m.UpdateTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (t *tasks) Update(ctx context.Context, userID string, taskID int64, upd model.TaskUpdate) (*model.Task, error) {
	var out model.Task
	row := t.db.QueryRowContext(ctx, `
        UPDATE tasks
        SET title=COALESCE($1, title), description=COALESCE($2, description), update_time=now()
        WHERE user_id=$3 AND task_id=$4
        RETURNING task_id, user_id, title, description, completed, creation_time, update_time
    `, upd.Title, upd.Description, userID, taskID)
	if err := row.Scan(&out.TaskID, &out.UserID, &out.Title, &out.Description, &out.Completed, &out.CreationTime, &out.UpdateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", taskID, model.ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

func (t *tasks) SetCompleted(ctx context.Context, userID string, taskID int64, completed bool) (*model.Task, error) {
	var out model.Task
	row := t.db.QueryRowContext(ctx, `
        UPDATE tasks SET completed=$1, update_time=now()
        WHERE user_id=$2 AND task_id=$3
        RETURNING task_id, user_id, title, description, completed, creation_time, update_time
    `, completed, userID, taskID)
	if err := row.Scan(&out.TaskID, &out.UserID, &out.Title, &out.Description, &out.Completed, &out.CreationTime, &out.UpdateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", taskID, model.ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

func (t *tasks) Delete(ctx context.Context, userID string, taskID int64) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id=$1 AND task_id=$2`, userID, taskID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %d: %w", taskID, model.ErrNotFound)
	}
	return nil
}

// --- Conversations ---

type conversations struct{ db *sql.DB }

func (c *conversations) Create(ctx context.Context, m *model.Conversation) (*model.Conversation, error) {
	out := *m
	row := c.db.QueryRowContext(ctx, `
        INSERT INTO conversations (conversation_id, user_id)
        VALUES ($1,$2)
        RETURNING creation_time, update_time
    `, m.ConversationID, m.UserID)
	if err := row.Scan(&out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *conversations) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	var out model.Conversation
	row := c.db.QueryRowContext(ctx, `
        SELECT conversation_id, user_id, creation_time, update_time
        FROM conversations WHERE conversation_id=$1
    `, conversationID)
	if err := row.Scan(&out.ConversationID, &out.UserID, &out.CreationTime, &out.UpdateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, model.ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

func (c *conversations) List(ctx context.Context, userID string) ([]*model.Conversation, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT conversation_id, user_id, creation_time, update_time
        FROM conversations WHERE user_id=$1 ORDER BY update_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Conversation
	for rows.Next() {
		var m model.Conversation
		if err := rows.Scan(&m.ConversationID, &m.UserID, &m.CreationTime, &m.UpdateTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Messages ---

type messages struct{ db *sql.DB }

func (ms *messages) Append(ctx context.Context, m *model.Message) (*model.Message, error) {
	tx, err := ms.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out := *m
	row := tx.QueryRowContext(ctx, `
        INSERT INTO messages (conversation_id, user_id, role, content)
        VALUES ($1,$2,$3,$4)
        RETURNING message_id, creation_time
    `, m.ConversationID, m.UserID, m.Role, m.Content)
	if err := row.Scan(&out.MessageID, &out.CreationTime); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE conversations SET update_time=now() WHERE conversation_id=$1
    `, m.ConversationID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (ms *messages) History(ctx context.Context, conversationID string, limit int) ([]*model.Message, error) {
	query := `SELECT message_id, conversation_id, user_id, role, content, creation_time
              FROM messages WHERE conversation_id=$1 ORDER BY message_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := ms.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.MessageID, &m.ConversationID, &m.UserID, &m.Role, &m.Content, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Rows come newest-first; callers get chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
