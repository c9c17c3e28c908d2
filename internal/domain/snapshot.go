package domain

import "time"

// MetricsSnapshot guarda as métricas de uma conta em um único dia
type MetricsSnapshot struct {
	ID         int64           `json:"id"`
	CustomerID string          `json:"customerId"`
	Date       time.Time       `json:"date"`
	Metrics    *AccountMetrics `json:"metrics"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}
