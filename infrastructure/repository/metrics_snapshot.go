package repository

//go:generate mockgen -source=metrics_snapshot.go -destination=mocks/metrics_snapshot_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ads-metrics-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-metrics-api/internal/domain"
)

const (
	metricsSnapshotsTable = "metrics_snapshots ms"
	snapshotColumns       = "ms.id, ms.customer_id, ms.date, ms.metrics, ms.created_at, ms.updated_at"
)

type MetricsSnapshotRepository interface {
	SaveOrUpdate(ctx context.Context, snapshot *domain.MetricsSnapshot) error
	GetByDateRange(ctx context.Context, customerID string, startDate, endDate time.Time) ([]*domain.MetricsSnapshot, error)
}

type metricsSnapshotRepository struct {
	conn postgres.Queryer
}

func NewMetricsSnapshotRepository(conn postgres.Queryer) MetricsSnapshotRepository {
	return &metricsSnapshotRepository{
		conn: conn,
	}
}

func buildUpsertQuery(snapshot *domain.MetricsSnapshot) (string, []interface{}, error) {
	if snapshot == nil || snapshot.Metrics == nil {
		return "", nil, errors.New("snapshot sem métricas")
	}

	metricsJSON, err := json.Marshal(snapshot.Metrics)
	if err != nil {
		return "", nil, fmt.Errorf("erro ao serializar métricas para JSON: %w", err)
	}

	return squirrel.StatementBuilder.
		Insert("metrics_snapshots").
		Columns("customer_id", "date", "metrics").
		Values(
			domain.NormalizeCustomerID(snapshot.CustomerID),
			snapshot.Date.Format(time.DateOnly),
			metricsJSON,
		).
		Suffix(`
			ON CONFLICT (customer_id, date) DO UPDATE SET
				metrics = EXCLUDED.metrics,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func buildDateRangeQuery(customerID string, startDate, endDate time.Time) (string, []interface{}, error) {
	return squirrel.
		Select(snapshotColumns).
		From(metricsSnapshotsTable).
		Where(squirrel.Eq{"ms.customer_id": domain.NormalizeCustomerID(customerID)}).
		Where(squirrel.GtOrEq{"ms.date": startDate.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"ms.date": endDate.Format(time.DateOnly)}).
		OrderBy("ms.date ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func (r *metricsSnapshotRepository) SaveOrUpdate(ctx context.Context, snapshot *domain.MetricsSnapshot) error {
	query, args, err := buildUpsertQuery(snapshot)
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *metricsSnapshotRepository) GetByDateRange(ctx context.Context, customerID string, startDate, endDate time.Time) ([]*domain.MetricsSnapshot, error) {
	query, args, err := buildDateRangeQuery(customerID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*domain.MetricsSnapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return snapshots, nil
}

func scanSnapshot(rows *sql.Rows) (*domain.MetricsSnapshot, error) {
	snapshot := &domain.MetricsSnapshot{}
	var metricsJSON []byte

	err := rows.Scan(
		&snapshot.ID,
		&snapshot.CustomerID,
		&snapshot.Date,
		&metricsJSON,
		&snapshot.CreatedAt,
		&snapshot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if metricsJSON != nil {
		metrics := &domain.AccountMetrics{}
		if err := json.Unmarshal(metricsJSON, metrics); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de metrics: %w", err)
		}
		snapshot.Metrics = metrics
	}

	return snapshot, nil
}
