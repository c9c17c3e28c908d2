package adsdomain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// SearchStreamBatch é um dos lotes devolvidos pelo endpoint googleAds:searchStream
type SearchStreamBatch struct {
	Results   []SearchRow `json:"results"`
	FieldMask string      `json:"fieldMask,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

type SearchRow struct {
	Customer *Customer `json:"customer,omitempty"`
	Metrics  *Metrics  `json:"metrics,omitempty"`
}

type Customer struct {
	ResourceName    string     `json:"resourceName,omitempty"`
	ID              Int64Value `json:"id"`
	DescriptiveName string     `json:"descriptiveName"`
}

// Metrics usa os nomes em camelCase da API REST. Campos int64 chegam como string.
type Metrics struct {
	CostMicros  Int64Value `json:"costMicros"`
	Conversions FloatValue `json:"conversions"`
	Impressions Int64Value `json:"impressions"`
	Clicks      Int64Value `json:"clicks"`
}

// SearchStreamResponse reúne todos os lotes de uma chamada searchStream
type SearchStreamResponse struct {
	Batches []SearchStreamBatch
}

// Rows devolve as linhas de todos os lotes na ordem recebida
func (r *SearchStreamResponse) Rows() []SearchRow {
	if r == nil {
		return nil
	}

	rows := make([]SearchRow, 0)
	for _, batch := range r.Batches {
		rows = append(rows, batch.Results...)
	}
	return rows
}

var ErrUnexpectedBody = errors.New("response body is neither a JSON array nor a JSON object")

// ParseSearchStream decodifica o corpo da resposta.
// Aceita o array de lotes do searchStream ou um único objeto com results.
func ParseSearchStream(customerID string, body []byte) (*SearchStreamResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &ParseError{CustomerID: customerID, Err: ErrUnexpectedBody}
	}

	response := &SearchStreamResponse{}

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &response.Batches); err != nil {
			return nil, &ParseError{CustomerID: customerID, Err: err}
		}
	case '{':
		var batch SearchStreamBatch
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, &ParseError{CustomerID: customerID, Err: err}
		}
		response.Batches = []SearchStreamBatch{batch}
	default:
		return nil, &ParseError{CustomerID: customerID, Err: ErrUnexpectedBody}
	}

	return response, nil
}

// Int64Value aceita número JSON ou string numérica; null ou ausente vale 0
type Int64Value int64

func (v *Int64Value) UnmarshalJSON(data []byte) error {
	raw, isNull, err := unquote(data)
	if err != nil || isNull {
		return err
	}

	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer value %q", raw)
	}
	if parsed < 0 {
		return fmt.Errorf("negative value %q", raw)
	}

	*v = Int64Value(parsed)
	return nil
}

func (v Int64Value) Int64() int64 {
	return int64(v)
}

// FloatValue aceita número JSON ou string numérica; null ou ausente vale 0
type FloatValue float64

func (v *FloatValue) UnmarshalJSON(data []byte) error {
	raw, isNull, err := unquote(data)
	if err != nil || isNull {
		return err
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fmt.Errorf("invalid decimal value %q", raw)
	}
	if parsed < 0 {
		return fmt.Errorf("negative value %q", raw)
	}

	*v = FloatValue(parsed)
	return nil
}

func (v FloatValue) Float64() float64 {
	return float64(v)
}

func unquote(data []byte) (string, bool, error) {
	if bytes.Equal(data, []byte("null")) {
		return "", true, nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false, err
		}
		if s == "" {
			return "", true, nil
		}
		return s, false, nil
	}

	return string(data), false, nil
}
