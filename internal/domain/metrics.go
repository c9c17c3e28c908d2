package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/vfg2006/ads-metrics-api/pkg/utils"
)

// MicrosPerUnit é a escala usada pela API para valores monetários
const MicrosPerUnit = 1_000_000

// AccountMetrics representa as métricas consolidadas de uma conta no período
type AccountMetrics struct {
	CustomerID        string  `json:"customerId"`
	CustomerName      string  `json:"customerName"`
	Spend             float64 `json:"spend"`
	Conversions       float64 `json:"conversions"`
	CostPerConversion float64 `json:"costPerConversion"`
	Impressions       int64   `json:"impressions"`
	Clicks            int64   `json:"clicks"`
	CTR               float64 `json:"ctr"`
}

// MetricsSummary agrega todas as contas solicitadas
type MetricsSummary struct {
	TotalSpend               float64 `json:"totalSpend"`
	TotalConversions         float64 `json:"totalConversions"`
	AverageCostPerConversion float64 `json:"averageCostPerConversion"`
}

type MetricsReport struct {
	Summary  MetricsSummary    `json:"summary"`
	Accounts []*AccountMetrics `json:"accounts"`
}

// MetricsFilters define o intervalo inclusivo de datas da consulta
type MetricsFilters struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewMetricsFilters valida o intervalo recebido no formato YYYY-MM-DD
func NewMetricsFilters(startDate, endDate string) (*MetricsFilters, error) {
	if startDate == "" || endDate == "" {
		return nil, NewValidationError(ReasonMissingDates, MsgMissingDates)
	}

	start, err := utils.ParseStrictDate(startDate)
	if err != nil {
		return nil, NewValidationError(ReasonInvalidDate, MsgInvalidDateFormat)
	}

	end, err := utils.ParseStrictDate(endDate)
	if err != nil {
		return nil, NewValidationError(ReasonInvalidDate, MsgInvalidDateFormat)
	}

	if start.After(end) {
		return nil, NewValidationError(ReasonInvalidRange, MsgInvalidDateRange)
	}

	return &MetricsFilters{StartDate: start, EndDate: end}, nil
}

func (f *MetricsFilters) StartDateString() string {
	return f.StartDate.Format(time.DateOnly)
}

func (f *MetricsFilters) EndDateString() string {
	return f.EndDate.Format(time.DateOnly)
}

// NormalizeCustomerID remove os hífens do ID da conta (123-456-7890 -> 1234567890)
func NormalizeCustomerID(customerID string) string {
	return strings.ReplaceAll(customerID, "-", "")
}

// FallbackCustomerName é usado quando a API não devolve o nome descritivo da conta
func FallbackCustomerName(customerID string) string {
	return fmt.Sprintf("Account %s", customerID)
}

// MicrosToUnits converte micros para a unidade monetária da conta
func MicrosToUnits(micros int64) float64 {
	return float64(micros) / MicrosPerUnit
}

func CostPerConversion(spend, conversions float64) float64 {
	if conversions <= 0 {
		return 0
	}
	return spend / conversions
}

// ClickThroughRate retorna cliques/impressões em percentual, 0 quando qualquer um for 0
func ClickThroughRate(clicks, impressions int64) float64 {
	if clicks <= 0 || impressions <= 0 {
		return 0
	}
	return utils.SafeDivide(float64(clicks), float64(impressions)) * 100
}

// NewMetricsSummary soma gasto e conversões de todas as contas
func NewMetricsSummary(accounts []*AccountMetrics) MetricsSummary {
	var summary MetricsSummary
	for _, account := range accounts {
		if account == nil {
			continue
		}
		summary.TotalSpend += account.Spend
		summary.TotalConversions += account.Conversions
	}

	summary.AverageCostPerConversion = CostPerConversion(summary.TotalSpend, summary.TotalConversions)

	return summary
}
