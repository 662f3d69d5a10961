package queries

import (
	"context"
	"database/sql"

	"github.com/OldStager01/decision-brain/pkg/models"
)

type DecisionRepository struct {
	db *sql.DB
}

func NewDecisionRepository(db *sql.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// Insert stores rec. Replayed event ids are ignored.
func (r *DecisionRepository) Insert(ctx context.Context, rec *models.DecisionRecord) error {
	query := `
		INSERT INTO decision_audit
			(event_id, trace_id, environment, action, proposed_action, safety_filtered, reason, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		rec.EventID,
		rec.TraceID,
		rec.Environment,
		rec.Action,
		rec.ProposedAction,
		rec.SafetyFiltered,
		rec.Reason,
		rec.DecidedAt,
	).Scan(&rec.ID)
	if err == sql.ErrNoRows {
		return nil
	}
	return err
}

func (r *DecisionRepository) GetRecent(ctx context.Context, limit int) ([]models.DecisionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, event_id, trace_id, environment, action, proposed_action,
			   safety_filtered, reason, decided_at
		FROM decision_audit
		ORDER BY decided_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.DecisionRecord, 0, limit)
	for rows.Next() {
		var rec models.DecisionRecord
		err := rows.Scan(
			&rec.ID, &rec.EventID, &rec.TraceID, &rec.Environment, &rec.Action,
			&rec.ProposedAction, &rec.SafetyFiltered, &rec.Reason, &rec.DecidedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *DecisionRepository) GetStats(ctx context.Context) (*models.DecisionStats, error) {
	query := `
		SELECT environment, action, COUNT(*), COUNT(*) FILTER (WHERE safety_filtered)
		FROM decision_audit
		GROUP BY environment, action`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.DecisionStats{ByAction: make(map[string]map[string]int64)}
	for rows.Next() {
		var env, action string
		var count, filtered int64
		if err := rows.Scan(&env, &action, &count, &filtered); err != nil {
			return nil, err
		}
		if stats.ByAction[env] == nil {
			stats.ByAction[env] = make(map[string]int64)
		}
		stats.ByAction[env][action] = count
		stats.Total += count
		stats.Filtered += filtered
	}

	return stats, rows.Err()
}
