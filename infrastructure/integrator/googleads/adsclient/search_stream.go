package adsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	adsdomain "github.com/vfg2006/ads-metrics-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-metrics-api/internal/domain"
	"github.com/vfg2006/ads-metrics-api/pkg/metrics"
	"github.com/vfg2006/ads-metrics-api/pkg/tracing"
)

const operationSearchStream = "search_stream"

type searchStreamRequest struct {
	Query string `json:"query"`
}

// SearchStream executa uma consulta GAQL para uma conta
func (c *AdsClient) SearchStream(ctx context.Context, customerID, query string) (*adsdomain.SearchStreamResponse, error) {
	normalizedID := domain.NormalizeCustomerID(customerID)

	ctx, span := tracing.Tracer().Start(ctx, "googleads.SearchStream",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("google_ads.customer_id", normalizedID)),
	)
	defer span.End()

	accessToken, err := c.GetValidToken(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token refresh failed")
		return nil, pkgerrors.Wrapf(err, "google ads query for customer %s", customerID)
	}

	payload, err := json.Marshal(searchStreamRequest{Query: query})
	if err != nil {
		return nil, &adsdomain.QueryError{CustomerID: customerID, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchStreamURL(normalizedID), bytes.NewReader(payload))
	if err != nil {
		return nil, &adsdomain.QueryError{CustomerID: customerID, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", c.Cfg.DeveloperToken)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.Cfg.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", domain.NormalizeCustomerID(c.Cfg.LoginCustomerID))
	}

	startedAt := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(operationSearchStream, 0, startedAt)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")

		logrus.WithFields(logrus.Fields{
			"customer_id": normalizedID,
			"error":       err.Error(),
		}).Error("Erro ao fazer a requisição ao Google Ads")

		return nil, &adsdomain.QueryError{CustomerID: customerID, Err: err}
	}
	defer resp.Body.Close()

	metrics.ObserveUpstream(operationSearchStream, resp.StatusCode, startedAt)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, &adsdomain.QueryError{CustomerID: customerID, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Token recusado: a próxima chamada força um novo refresh
		if resp.StatusCode == http.StatusUnauthorized {
			c.TokenManager.InvalidateIfCurrent(accessToken)
		}

		queryErr := &adsdomain.QueryError{
			CustomerID: customerID,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}

		span.RecordError(queryErr)
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))

		logrus.WithFields(logrus.Fields{
			"customer_id": normalizedID,
			"status_code": resp.StatusCode,
			"body":        string(body),
		}).Warn("Google Ads respondeu com erro")

		return nil, queryErr
	}

	response, err := adsdomain.ParseSearchStream(customerID, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid response body")
		return nil, err
	}

	return response, nil
}
