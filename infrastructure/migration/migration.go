package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-metrics-api/infrastructure/database/postgres"
)

// Statements são idempotentes e executados em ordem numa única transação
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS metrics_snapshots (
		id BIGSERIAL PRIMARY KEY,
		customer_id VARCHAR(20) NOT NULL,
		date DATE NOT NULL,
		metrics JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT metrics_snapshots_customer_date_key UNIQUE (customer_id, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_snapshots_date ON metrics_snapshots (date)`,
}

// Up cria o schema usado pelo armazenamento de snapshots
func Up(ctx context.Context, conn postgres.Conn) error {
	logrus.WithField("statements", len(Statements)).Info("Aplicando migrações do banco de dados")

	err := conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migração %d falhou: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.Info("Migrações aplicadas com sucesso")
	return nil
}
