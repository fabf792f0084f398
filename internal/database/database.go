package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bizsync/internal/migrations"
	"bizsync/internal/models"
	"bizsync/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

// nowFunc is a test hook for timestamps written by dead-letter moves.
var nowFunc = time.Now

// Database is the durable local store backing the offline queue. Each
// partition (queued actions, dead-lettered actions, notifications, cached
// entities, user data, auth token) is a table created by the initial
// schema. SQLite's own transactional isolation covers concurrent calls;
// this layer adds no extra locking.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if err := security.ValidateStorePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema, err := migrations.GetInitialSchema()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to read schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	enc, err := NewEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: enc}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Queued action operations

// EnqueueAction persists a queued action. A failed insert is surfaced to
// the caller; durability is the whole point of this partition.
func (d *Database) EnqueueAction(ctx context.Context, action *models.QueuedAction) error {
	encryptedPayload, err := d.encryptor.EncryptIfEnabled(string(action.Payload))
	if err != nil {
		return fmt.Errorf("failed to encrypt payload: %w", err)
	}

	return retryableWrite(ctx, "enqueue action", func() error {
		_, err := d.db.ExecContext(ctx, insertActionQuery,
			action.ID,
			string(action.Type),
			encryptedPayload,
			action.URL,
			action.Method,
			action.IdempotencyKey,
			action.RetryCount,
			action.MaxRetries,
			action.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to enqueue action: %w", err)
		}
		return nil
	})
}

// GetAllActions returns every queued action ordered by creation time
// ascending, so dependent mutations replay in causal order. Returns an
// empty slice, never nil, when the partition is empty.
func (d *Database) GetAllActions(ctx context.Context) ([]models.QueuedAction, error) {
	rows, err := d.db.QueryContext(ctx, selectActionsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actions := []models.QueuedAction{}
	for rows.Next() {
		var a models.QueuedAction
		var actionType, payload string
		if err := rows.Scan(
			&a.ID, &actionType, &payload, &a.URL, &a.Method,
			&a.IdempotencyKey, &a.RetryCount, &a.MaxRetries, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		decrypted, err := d.encryptor.DecryptIfEnabled(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}
		a.Type = models.ActionType(actionType)
		a.Payload = []byte(decrypted)
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actions: %w", err)
	}

	return actions, nil
}

// GetAction returns the queued action with the given id, or nil when absent.
func (d *Database) GetAction(ctx context.Context, id string) (*models.QueuedAction, error) {
	var a models.QueuedAction
	var actionType, payload string

	err := d.db.QueryRowContext(ctx, selectActionByIDQuery, id).Scan(
		&a.ID, &actionType, &payload, &a.URL, &a.Method,
		&a.IdempotencyKey, &a.RetryCount, &a.MaxRetries, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action: %w", err)
	}

	decrypted, err := d.encryptor.DecryptIfEnabled(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt payload: %w", err)
	}
	a.Type = models.ActionType(actionType)
	a.Payload = []byte(decrypted)
	return &a, nil
}

// RemoveAction deletes a queued action. Removing an id that is no longer
// present is a no-op, not an error: a parallel pass may already have
// removed it.
func (d *Database) RemoveAction(ctx context.Context, id string) error {
	return retryableWrite(ctx, "remove action", func() error {
		if _, err := d.db.ExecContext(ctx, deleteActionQuery, id); err != nil {
			return fmt.Errorf("failed to remove action: %w", err)
		}
		return nil
	})
}

// UpdateActionRetryCount sets the retry counter for a queued action.
// No-op when the action has already been removed.
func (d *Database) UpdateActionRetryCount(ctx context.Context, id string, count int) error {
	return retryableWrite(ctx, "update retry count", func() error {
		if _, err := d.db.ExecContext(ctx, updateActionRetryCountQuery, count, id); err != nil {
			return fmt.Errorf("failed to update retry count: %w", err)
		}
		return nil
	})
}

// CountPendingActions returns the number of queued actions awaiting replay.
func (d *Database) CountPendingActions(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, countActionsQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}
	return count, nil
}

// Dead-letter operations

// MarkActionFailed moves an exhausted action to the failed partition in a
// single transaction, so the action is never visible in both partitions
// and never lost between them.
func (d *Database) MarkActionFailed(ctx context.Context, action *models.QueuedAction, lastError string) error {
	encryptedPayload, err := d.encryptor.EncryptIfEnabled(string(action.Payload))
	if err != nil {
		return fmt.Errorf("failed to encrypt payload: %w", err)
	}

	return retryableWrite(ctx, "mark action failed", func() error {
		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, insertFailedActionQuery,
			action.ID, string(action.Type), encryptedPayload, action.URL,
			action.Method, action.IdempotencyKey, action.RetryCount,
			action.MaxRetries, lastError, action.CreatedAt, nowFunc(),
		); err != nil {
			return fmt.Errorf("failed to insert failed action: %w", err)
		}

		if _, err := tx.ExecContext(ctx, deleteActionQuery, action.ID); err != nil {
			return fmt.Errorf("failed to remove exhausted action: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit dead-letter move: %w", err)
		}
		return nil
	})
}

// GetFailedActions returns dead-lettered actions oldest first.
func (d *Database) GetFailedActions(ctx context.Context) ([]models.FailedAction, error) {
	rows, err := d.db.QueryContext(ctx, selectFailedActionsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query failed actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	failed := []models.FailedAction{}
	for rows.Next() {
		var f models.FailedAction
		var actionType, payload string
		if err := rows.Scan(
			&f.ID, &actionType, &payload, &f.URL, &f.Method,
			&f.IdempotencyKey, &f.RetryCount, &f.MaxRetries,
			&f.LastError, &f.CreatedAt, &f.FailedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan failed action: %w", err)
		}

		decrypted, err := d.encryptor.DecryptIfEnabled(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}
		f.Type = models.ActionType(actionType)
		f.Payload = []byte(decrypted)
		failed = append(failed, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate failed actions: %w", err)
	}

	return failed, nil
}

// RequeueFailedAction moves a dead-lettered action back into the queue
// with a reset retry counter. Returns the requeued action, or nil when the
// id is not in the failed partition.
func (d *Database) RequeueFailedAction(ctx context.Context, id string) (*models.QueuedAction, error) {
	var f models.FailedAction
	var actionType, payload string

	err := d.db.QueryRowContext(ctx, selectFailedActionByIDQuery, id).Scan(
		&f.ID, &actionType, &payload, &f.URL, &f.Method,
		&f.IdempotencyKey, &f.RetryCount, &f.MaxRetries,
		&f.LastError, &f.CreatedAt, &f.FailedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get failed action: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertActionQuery,
		f.ID, actionType, payload, f.URL, f.Method,
		f.IdempotencyKey, 0, f.MaxRetries, nowFunc(),
	); err != nil {
		return nil, fmt.Errorf("failed to requeue action: %w", err)
	}

	if _, err := tx.ExecContext(ctx, deleteFailedActionQuery, id); err != nil {
		return nil, fmt.Errorf("failed to remove failed action: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit requeue: %w", err)
	}

	decrypted, err := d.encryptor.DecryptIfEnabled(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt payload: %w", err)
	}

	action := f.QueuedAction
	action.Type = models.ActionType(actionType)
	action.Payload = []byte(decrypted)
	action.RetryCount = 0
	return &action, nil
}

// Queued notification operations

func (d *Database) EnqueueNotification(ctx context.Context, n *models.QueuedNotification) error {
	return retryableWrite(ctx, "enqueue notification", func() error {
		_, err := d.db.ExecContext(ctx, insertNotificationQuery,
			n.ID, n.Title, n.Body, string(n.Options),
			n.RetryCount, n.MaxRetries, n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to enqueue notification: %w", err)
		}
		return nil
	})
}

func (d *Database) GetAllNotifications(ctx context.Context) ([]models.QueuedNotification, error) {
	rows, err := d.db.QueryContext(ctx, selectNotificationsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	notifications := []models.QueuedNotification{}
	for rows.Next() {
		var n models.QueuedNotification
		var body, options sql.NullString
		if err := rows.Scan(
			&n.ID, &n.Title, &body, &options,
			&n.RetryCount, &n.MaxRetries, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Body = body.String
		if options.Valid {
			n.Options = []byte(options.String)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

func (d *Database) RemoveNotification(ctx context.Context, id string) error {
	return retryableWrite(ctx, "remove notification", func() error {
		if _, err := d.db.ExecContext(ctx, deleteNotificationQuery, id); err != nil {
			return fmt.Errorf("failed to remove notification: %w", err)
		}
		return nil
	})
}

func (d *Database) UpdateNotificationRetryCount(ctx context.Context, id string, count int) error {
	return retryableWrite(ctx, "update notification retry count", func() error {
		if _, err := d.db.ExecContext(ctx, updateNotificationRetryCountQuery, count, id); err != nil {
			return fmt.Errorf("failed to update notification retry count: %w", err)
		}
		return nil
	})
}

// Cached entity operations

func entityTable(kind models.EntityKind) (string, error) {
	switch kind {
	case models.EntityBusiness:
		return "cached_businesses", nil
	case models.EntityService:
		return "cached_services", nil
	case models.EntityProduct:
		return "cached_products", nil
	default:
		return "", fmt.Errorf("unknown entity kind: %s", kind)
	}
}

// SaveCachedEntity stores or replaces a local snapshot of a directory entity.
func (d *Database) SaveCachedEntity(ctx context.Context, entity *models.CachedEntity) error {
	table, err := entityTable(entity.Kind)
	if err != nil {
		return err
	}

	return retryableWrite(ctx, "save cached entity", func() error {
		query := fmt.Sprintf(upsertEntityQuery, table)
		if _, err := d.db.ExecContext(ctx, query, entity.EntityID, string(entity.Data)); err != nil {
			return fmt.Errorf("failed to save cached entity: %w", err)
		}
		return nil
	})
}

// GetCachedEntity returns the snapshot for the given kind and id, or nil
// when no snapshot exists.
func (d *Database) GetCachedEntity(ctx context.Context, kind models.EntityKind, entityID string) (*models.CachedEntity, error) {
	table, err := entityTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(selectEntityQuery, table)
	entity := &models.CachedEntity{Kind: kind}
	var data string

	err = d.db.QueryRowContext(ctx, query, entityID).Scan(&entity.EntityID, &data, &entity.CachedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached entity: %w", err)
	}

	entity.Data = []byte(data)
	return entity, nil
}

// CleanupOldEntities removes snapshots older than the retention window
// from every cached-entity partition.
func (d *Database) CleanupOldEntities(retentionDays int) error {
	for _, kind := range []models.EntityKind{models.EntityBusiness, models.EntityService, models.EntityProduct} {
		table, err := entityTable(kind)
		if err != nil {
			return err
		}
		query := fmt.Sprintf(deleteOldEntitiesQuery, table)
		if _, err := d.db.Exec(query, retentionDays); err != nil {
			return fmt.Errorf("failed to cleanup %s: %w", table, err)
		}
	}
	return nil
}

// User data and auth token operations

func (d *Database) SetUserData(ctx context.Context, key, value string) error {
	return retryableWrite(ctx, "set user data", func() error {
		if _, err := d.db.ExecContext(ctx, upsertUserDataQuery, key, value); err != nil {
			return fmt.Errorf("failed to set user data: %w", err)
		}
		return nil
	})
}

func (d *Database) GetUserData(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx, selectUserDataQuery, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user data: %w", err)
	}
	return value, nil
}

// SetAuthToken stores the bearer token used on replay, encrypted at rest
// when encryption is enabled.
func (d *Database) SetAuthToken(ctx context.Context, token string) error {
	encrypted, err := d.encryptor.EncryptIfEnabled(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	return retryableWrite(ctx, "set auth token", func() error {
		if _, err := d.db.ExecContext(ctx, upsertAuthTokenQuery, encrypted); err != nil {
			return fmt.Errorf("failed to set auth token: %w", err)
		}
		return nil
	})
}

// GetAuthToken returns the stored bearer token, or empty string when no
// token has been saved. A missing token is not an error: replay requests
// are simply sent without an Authorization header.
func (d *Database) GetAuthToken(ctx context.Context) (string, error) {
	var encrypted string
	err := d.db.QueryRowContext(ctx, selectAuthTokenQuery).Scan(&encrypted)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get auth token: %w", err)
	}

	token, err := d.encryptor.DecryptIfEnabled(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	return token, nil
}

// Clear wipes every partition. Used by the "reset local state" operation;
// idempotent, clearing an empty store succeeds.
func (d *Database) Clear(ctx context.Context) error {
	tables := []string{
		"offline_actions", "failed_actions", "offline_notifications",
		"cached_businesses", "cached_services", "cached_products",
		"user_data", "auth_token",
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clear transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}
