package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SQLTraceStore implements TraceStore over the traces table.
type SQLTraceStore struct {
	db *sql.DB
	d  dialect
}

const traceColumns = `trace_id, session_id, timestamp, model, input, output,
	total_elapsed_ms, total_input_tokens, total_output_tokens,
	total_tool_calls, tools, status, spans`

func (s *SQLTraceStore) Add(ctx context.Context, t TraceInfo) error {
	if t.Tools == nil {
		t.Tools = []string{}
	}
	tools, err := json.Marshal(t.Tools)
	if err != nil {
		return fmt.Errorf("marshal tools: %w", err)
	}
	if t.Spans == nil {
		t.Spans = []SpanInfo{}
	}
	spans, err := json.Marshal(t.Spans)
	if err != nil {
		return fmt.Errorf("marshal spans: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO traces (`+traceColumns+`) VALUES (`+s.d.phs(1, 13)+`)`,
		t.TraceID, t.SessionID, t.Timestamp, t.Model, t.Input, t.Output,
		t.TotalElapsedMs, t.TotalInputTokens, t.TotalOutputTokens,
		t.TotalToolCalls, string(tools), t.Status, string(spans),
	)
	if err != nil {
		return fmt.Errorf("insert trace: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrace(r rowScanner) (TraceInfo, error) {
	var t TraceInfo
	var toolsJSON, spansJSON []byte
	if err := r.Scan(
		&t.TraceID, &t.SessionID, &t.Timestamp, &t.Model, &t.Input, &t.Output,
		&t.TotalElapsedMs, &t.TotalInputTokens, &t.TotalOutputTokens,
		&t.TotalToolCalls, &toolsJSON, &t.Status, &spansJSON,
	); err != nil {
		return t, err
	}
	if err := json.Unmarshal(toolsJSON, &t.Tools); err != nil {
		return t, fmt.Errorf("unmarshal tools: %w", err)
	}
	if err := json.Unmarshal(spansJSON, &t.Spans); err != nil {
		return t, fmt.Errorf("unmarshal spans: %w", err)
	}
	return t, nil
}

func (s *SQLTraceStore) Get(ctx context.Context, id string) (TraceInfo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+traceColumns+` FROM traces WHERE trace_id = `+s.d.ph(1), id)
	t, err := scanTrace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("query trace: %w", err)
	}
	return t, nil
}

// List returns all traces, newest first.
func (s *SQLTraceStore) List(ctx context.Context) ([]TraceInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+traceColumns+` FROM traces ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	defer rows.Close()

	traces := []TraceInfo{}
	for rows.Next() {
		t, err := scanTrace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		traces = append(traces, t)
	}
	return traces, rows.Err()
}

func (s *SQLTraceStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM traces WHERE trace_id = `+s.d.ph(1), id)
	if err != nil {
		return fmt.Errorf("delete trace: %w", err)
	}
	return nil
}

func (s *SQLTraceStore) Summary(ctx context.Context) (MetricsSummary, error) {
	var m MetricsSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_input_tokens), 0),
			COALESCE(SUM(total_output_tokens), 0),
			COALESCE(SUM(total_tool_calls), 0),
			COALESCE(AVG(total_elapsed_ms), 0)
		FROM traces`).Scan(
		&m.TotalTraces, &m.TotalInputTokens, &m.TotalOutputTokens,
		&m.TotalToolCalls, &m.AvgLatencyMs,
	)
	if err != nil {
		return m, fmt.Errorf("query summary: %w", err)
	}
	return m, nil
}
