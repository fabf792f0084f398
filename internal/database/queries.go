package database

// Queued action queries
const (
	insertActionQuery = `
		INSERT INTO offline_actions (
			id, action_type, payload, url, method,
			idempotency_key, retry_count, max_retries, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectActionsQuery = `
		SELECT id, action_type, payload, url, method,
		       idempotency_key, retry_count, max_retries, created_at
		FROM offline_actions
		ORDER BY created_at ASC, id ASC
	`

	selectActionByIDQuery = `
		SELECT id, action_type, payload, url, method,
		       idempotency_key, retry_count, max_retries, created_at
		FROM offline_actions
		WHERE id = ?
	`

	deleteActionQuery = `
		DELETE FROM offline_actions WHERE id = ?
	`

	updateActionRetryCountQuery = `
		UPDATE offline_actions SET retry_count = ? WHERE id = ?
	`

	countActionsQuery = `
		SELECT COUNT(*) FROM offline_actions
	`
)

// Dead-letter queries
const (
	insertFailedActionQuery = `
		INSERT OR REPLACE INTO failed_actions (
			id, action_type, payload, url, method, idempotency_key,
			retry_count, max_retries, last_error, created_at, failed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectFailedActionsQuery = `
		SELECT id, action_type, payload, url, method, idempotency_key,
		       retry_count, max_retries, last_error, created_at, failed_at
		FROM failed_actions
		ORDER BY failed_at ASC, id ASC
	`

	selectFailedActionByIDQuery = `
		SELECT id, action_type, payload, url, method, idempotency_key,
		       retry_count, max_retries, last_error, created_at, failed_at
		FROM failed_actions
		WHERE id = ?
	`

	deleteFailedActionQuery = `
		DELETE FROM failed_actions WHERE id = ?
	`
)

// Queued notification queries
const (
	insertNotificationQuery = `
		INSERT INTO offline_notifications (
			id, title, body, options, retry_count, max_retries, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectNotificationsQuery = `
		SELECT id, title, body, options, retry_count, max_retries, created_at
		FROM offline_notifications
		ORDER BY created_at ASC, id ASC
	`

	deleteNotificationQuery = `
		DELETE FROM offline_notifications WHERE id = ?
	`

	updateNotificationRetryCountQuery = `
		UPDATE offline_notifications SET retry_count = ? WHERE id = ?
	`
)

// Cached entity queries (table name substituted per partition)
const (
	upsertEntityQuery = `
		INSERT OR REPLACE INTO %s (entity_id, data, cached_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`

	selectEntityQuery = `
		SELECT entity_id, data, cached_at FROM %s WHERE entity_id = ?
	`

	deleteOldEntitiesQuery = `
		DELETE FROM %s
		WHERE cached_at < datetime('now', '-' || ? || ' days')
	`
)

// User data and auth token queries
const (
	upsertUserDataQuery = `
		INSERT OR REPLACE INTO user_data (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`

	selectUserDataQuery = `
		SELECT value FROM user_data WHERE key = ?
	`

	upsertAuthTokenQuery = `
		INSERT OR REPLACE INTO auth_token (id, token, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
	`

	selectAuthTokenQuery = `
		SELECT token FROM auth_token WHERE id = 1
	`
)
