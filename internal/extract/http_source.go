package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

// maxResponseBytes bounds the customer payload read from the remote endpoint
const maxResponseBytes = 64 << 20

// HTTPSource fetches customers from a JSON endpoint with a GET request
type HTTPSource struct {
	endpoint string
	client   *http.Client
	parser   CustomerParser
}

// NewHTTPSource creates a new HTTP customer source
func NewHTTPSource(endpoint string, timeout time.Duration, parser CustomerParser) *HTTPSource {
	return &HTTPSource{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		parser:   parser,
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

// FetchCustomers performs the request. Transport errors, non-2xx statuses
// and malformed payloads are all errors.
func (s *HTTPSource) FetchCustomers(ctx context.Context) ([]domain.CustomerRecord, error) {
	if s.endpoint == "" {
		return nil, fmt.Errorf("remote endpoint is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return s.parser.ParseList(body)
}
