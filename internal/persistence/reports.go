package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// CreateSession inserts a new session and returns its generated id.
func (s *SQLiteStore) CreateSession(ctx context.Context, project, mode string) (string, error) {
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, project, mode)
		VALUES (?, ?, ?)
	`, id, project, mode)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// SessionExists reports whether a session with the given id is recorded.
func (s *SQLiteStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query session: %w", err)
	}
	return true, nil
}

// SaveTaskReport appends a settled task's deliverable to the session.
func (s *SQLiteStore) SaveTaskReport(ctx context.Context, sessionID string, report TaskReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_reports (session_id, task_id, department, description, status, result, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sessionID, report.TaskID, report.Department, report.Description, report.Status, report.Result, report.Error)
	if err != nil {
		return fmt.Errorf("failed to save task report: %w", err)
	}
	return nil
}

// ListTaskReports returns all task reports for a session in insertion order.
func (s *SQLiteStore) ListTaskReports(ctx context.Context, sessionID string) ([]TaskReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, department, description, status, result, error, created_at
		FROM task_reports
		WHERE session_id = ?
		ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task reports: %w", err)
	}
	defer rows.Close()

	var reports []TaskReport
	for rows.Next() {
		var r TaskReport
		if err := rows.Scan(&r.TaskID, &r.Department, &r.Description, &r.Status, &r.Result, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task reports: %w", err)
	}
	return reports, nil
}

// SaveAgentMessage records one inter-agent message for the session.
func (s *SQLiteStore) SaveAgentMessage(ctx context.Context, sessionID string, msg AgentMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_messages (session_id, sender, recipient, content)
		VALUES (?, ?, ?, ?)
	`, sessionID, msg.Sender, msg.Recipient, msg.Content)
	if err != nil {
		return fmt.Errorf("failed to save agent message: %w", err)
	}
	return nil
}

// ListAgentMessages returns all messages for a session in insertion order.
func (s *SQLiteStore) ListAgentMessages(ctx context.Context, sessionID string) ([]AgentMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sender, recipient, content, timestamp
		FROM agent_messages
		WHERE session_id = ?
		ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent messages: %w", err)
	}
	defer rows.Close()

	var messages []AgentMessage
	for rows.Next() {
		var m AgentMessage
		if err := rows.Scan(&m.Sender, &m.Recipient, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan agent message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agent messages: %w", err)
	}
	return messages, nil
}
