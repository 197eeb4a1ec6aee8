package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

// CustomerParser defines the interface for parsing raw payloads into customer records
type CustomerParser interface {
	Parse(body []byte) (domain.CustomerRecord, error)
	ParseList(body []byte) ([]domain.CustomerRecord, error)
}

// JSONCustomerParser implements CustomerParser for JSON payloads
type JSONCustomerParser struct{}

// NewJSONCustomerParser creates a new JSON customer parser
func NewJSONCustomerParser() *JSONCustomerParser {
	return &JSONCustomerParser{}
}

// Parse parses a single JSON customer object. Every documented field must be present.
func (p *JSONCustomerParser) Parse(body []byte) (domain.CustomerRecord, error) {
	var msgBody map[string]interface{}
	if err := json.Unmarshal(body, &msgBody); err != nil {
		return domain.CustomerRecord{}, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	return customerFromMap(msgBody)
}

// ParseList parses either a JSON array of customers or an object holding
// them under "customers"
func (p *JSONCustomerParser) ParseList(body []byte) ([]domain.CustomerRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	var items []map[string]interface{}
	if trimmed[0] == '{' {
		var envelope struct {
			Customers []map[string]interface{} `json:"customers"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal customers payload: %w", err)
		}
		if envelope.Customers == nil {
			return nil, fmt.Errorf("payload has no customers field")
		}
		items = envelope.Customers
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customers payload: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("payload is not a customer list")
	}

	records := make([]domain.CustomerRecord, 0, len(items))
	for i, item := range items {
		rec, err := customerFromMap(item)
		if err != nil {
			return nil, fmt.Errorf("customer %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func customerFromMap(m map[string]interface{}) (domain.CustomerRecord, error) {
	for _, key := range domain.CustomerColumns {
		if _, ok := m[key]; !ok {
			return domain.CustomerRecord{}, fmt.Errorf("missing field %s", key)
		}
	}

	orders, err := getInt64Field(m, "total_orders")
	if err != nil {
		return domain.CustomerRecord{}, err
	}
	spent, err := getFloat64Field(m, "total_spent")
	if err != nil {
		return domain.CustomerRecord{}, err
	}

	rec := domain.CustomerRecord{
		TenantID:          getStringField(m, "tenant_id"),
		CustomerID:        getStringField(m, "customer_id"),
		CustomerName:      getStringField(m, "customer_name"),
		Region:            getStringField(m, "region"),
		ProductPreference: getStringField(m, "product_preference"),
		TotalSpent:        spent,
		TotalOrders:       orders,
	}
	if rec.TenantID == "" || rec.CustomerID == "" {
		return domain.CustomerRecord{}, fmt.Errorf("tenant_id and customer_id must be non-empty strings")
	}
	return rec, nil
}

// Helper functions for extracting fields from parsed JSON
func getStringField(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getFloat64Field(m map[string]interface{}, key string) (float64, error) {
	val, ok := m[key].(float64)
	if !ok {
		return 0, fmt.Errorf("field %s is not a number", key)
	}
	return val, nil
}

func getInt64Field(m map[string]interface{}, key string) (int64, error) {
	val, err := getFloat64Field(m, key)
	if err != nil {
		return 0, err
	}
	if val != math.Trunc(val) {
		return 0, fmt.Errorf("field %s is not an integer: %v", key, val)
	}
	return int64(val), nil
}
