package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
)

// MockQueueConsumer is a mock implementation of queue.QueueConsumer
type MockQueueConsumer struct {
	mock.Mock
}

func (m *MockQueueConsumer) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) QueueURL() string {
	args := m.Called()
	return args.String(0)
}

// MockCustomerSource is a mock implementation of CustomerSource
type MockCustomerSource struct {
	mock.Mock
}

func (m *MockCustomerSource) Name() string {
	return "mock"
}

func (m *MockCustomerSource) FetchCustomers(ctx context.Context) ([]domain.CustomerRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CustomerRecord), args.Error(1)
}

var (
	testTenants  = []string{"tenant_a", "tenant_b", "tenant_c"}
	testRegions  = []string{"North", "South", "East", "West"}
	testProducts = []string{"Product A", "Product B", "Product C", "Product D", "Product E"}
)

func TestFallbackGenerator_Generate(t *testing.T) {
	gen := NewFallbackGenerator(testTenants, testRegions, testProducts, 50, 42)

	records := gen.Generate()

	require.Len(t, records, 150)
	perTenant := map[string]int{}
	for _, rec := range records {
		perTenant[rec.TenantID]++
		assert.True(t, strings.HasPrefix(rec.CustomerID, "cust_"+rec.TenantID+"_"), rec.CustomerID)
		assert.Contains(t, testRegions, rec.Region)
		assert.Contains(t, testProducts[:3], rec.ProductPreference)
		assert.GreaterOrEqual(t, rec.TotalSpent, 100.0)
		assert.LessOrEqual(t, rec.TotalSpent, 5000.0)
		assert.GreaterOrEqual(t, rec.TotalOrders, int64(1))
		assert.LessOrEqual(t, rec.TotalOrders, int64(20))
	}
	for _, tenant := range testTenants {
		assert.Equal(t, 50, perTenant[tenant])
	}
	assert.Equal(t, "cust_tenant_a_000", records[0].CustomerID)
	assert.Equal(t, "Customer 1", records[0].CustomerName)
}

func TestFallbackGenerator_Deterministic(t *testing.T) {
	first := NewFallbackGenerator(testTenants, testRegions, testProducts, 10, 7).Generate()
	second := NewFallbackGenerator(testTenants, testRegions, testProducts, 10, 7).Generate()

	assert.Equal(t, first, second)
}

func TestRemoteExtractor_Extract_Success(t *testing.T) {
	source := new(MockCustomerSource)
	records := []domain.CustomerRecord{{TenantID: "tenant_a", CustomerID: "c1", TotalSpent: 10, TotalOrders: 2}}
	source.On("FetchCustomers", mock.Anything).Return(records, nil)

	extractor := NewRemoteExtractor(source, NewFallbackGenerator(testTenants, testRegions, testProducts, 5, 1), zap.NewNop())
	outcome := extractor.Extract(context.Background())

	assert.False(t, outcome.Degraded)
	assert.NoError(t, outcome.Cause)
	assert.Equal(t, "mock", outcome.Source)
	assert.Equal(t, domain.DatasetCustomers, outcome.Batch.Dataset())
	assert.Equal(t, domain.CustomerColumns, outcome.Batch.Columns())
	assert.Equal(t, records, outcome.Batch.Records)
	source.AssertExpectations(t)
}

func TestRemoteExtractor_Extract_Fallback(t *testing.T) {
	source := new(MockCustomerSource)
	cause := errors.New("connection refused")
	source.On("FetchCustomers", mock.Anything).Return(nil, cause)

	extractor := NewRemoteExtractor(source, NewFallbackGenerator(testTenants, testRegions, testProducts, 5, 1), zap.NewNop())
	outcome := extractor.Extract(context.Background())

	assert.True(t, outcome.Degraded)
	assert.ErrorIs(t, outcome.Cause, cause)
	assert.Equal(t, 15, outcome.Batch.Len())
	assert.Equal(t, domain.CustomerColumns, outcome.Batch.Columns())
}

func TestRemoteExtractor_Extract_NoSource(t *testing.T) {
	extractor := NewRemoteExtractor(nil, NewFallbackGenerator(testTenants, testRegions, testProducts, 2, 1), zap.NewNop())
	outcome := extractor.Extract(context.Background())

	assert.True(t, outcome.Degraded)
	assert.ErrorIs(t, outcome.Cause, ErrNoRemoteSource)
	assert.Equal(t, 6, outcome.Batch.Len())
}

func TestHTTPSource_FetchCustomers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"customers":[` + customerJSON + `]}`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, time.Second, NewJSONCustomerParser())
	records, err := source.FetchCustomers(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "c1", records[0].CustomerID)
}

func TestHTTPSource_FetchCustomers_Errors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, time.Second, NewJSONCustomerParser()).FetchCustomers(context.Background())
		assert.ErrorContains(t, err, "503")
	})

	t.Run("malformed payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, time.Second, NewJSONCustomerParser()).FetchCustomers(context.Background())
		assert.Error(t, err)
	})

	t.Run("null payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`null`))
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, time.Second, NewJSONCustomerParser()).FetchCustomers(context.Background())
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, 20*time.Millisecond, NewJSONCustomerParser()).FetchCustomers(context.Background())
		assert.Error(t, err)
	})

	t.Run("no endpoint", func(t *testing.T) {
		_, err := NewHTTPSource("", time.Second, NewJSONCustomerParser()).FetchCustomers(context.Background())
		assert.Error(t, err)
	})
}

func TestQueueSource_FetchCustomers_DrainsUntilEmpty(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/customers")

	mockConsumer.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{
			{MessageId: aws.String("msg-1"), ReceiptHandle: aws.String("r1"), Body: aws.String(customerJSON)},
			{MessageId: aws.String("msg-2"), ReceiptHandle: aws.String("r2"), Body: aws.String("[" + customerJSON + "," + customerJSON + "]")},
		}}, nil).Once()
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(&sqs.ReceiveMessageOutput{}, nil).Once()
	mockConsumer.On("DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput")).
		Return(&sqs.DeleteMessageOutput{}, nil).Twice()

	source := NewQueueSource(mockConsumer, NewJSONCustomerParser(), QueueSourceConfig{MaxMessages: 10, WaitTimeSeconds: 1}, zap.NewNop())
	records, err := source.FetchCustomers(context.Background())

	require.NoError(t, err)
	assert.Len(t, records, 3)
	mockConsumer.AssertExpectations(t)
}

func TestQueueSource_FetchCustomers_RespectsCap(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockConsumer.On("QueueURL").Return("queue")
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.Anything).
		Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{
			{MessageId: aws.String("msg-1"), ReceiptHandle: aws.String("r1"), Body: aws.String(customerJSON)},
			{MessageId: aws.String("msg-2"), ReceiptHandle: aws.String("r2"), Body: aws.String(customerJSON)},
		}}, nil).Once()
	mockConsumer.On("DeleteMessage", mock.Anything, mock.Anything).Return(&sqs.DeleteMessageOutput{}, nil)

	source := NewQueueSource(mockConsumer, NewJSONCustomerParser(), QueueSourceConfig{MaxMessages: 10, MaxCustomers: 2}, zap.NewNop())
	records, err := source.FetchCustomers(context.Background())

	require.NoError(t, err)
	assert.Len(t, records, 2)
	mockConsumer.AssertNumberOfCalls(t, "ReceiveMessages", 1)
}

func TestQueueSource_FetchCustomers_MalformedLeavesMessages(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockConsumer.On("QueueURL").Return("queue")
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.Anything).
		Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{
			{MessageId: aws.String("msg-1"), ReceiptHandle: aws.String("r1"), Body: aws.String(customerJSON)},
			{MessageId: aws.String("msg-2"), ReceiptHandle: aws.String("r2"), Body: aws.String(`not json`)},
		}}, nil).Once()

	source := NewQueueSource(mockConsumer, NewJSONCustomerParser(), QueueSourceConfig{MaxMessages: 10}, zap.NewNop())
	_, err := source.FetchCustomers(context.Background())

	assert.ErrorContains(t, err, "msg-2")
	mockConsumer.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
}

func TestQueueSource_FetchCustomers_ReceiveError(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockConsumer.On("QueueURL").Return("queue")
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.Anything).
		Return(nil, errors.New("access denied")).Once()

	source := NewQueueSource(mockConsumer, NewJSONCustomerParser(), QueueSourceConfig{MaxMessages: 10}, zap.NewNop())
	_, err := source.FetchCustomers(context.Background())

	assert.ErrorContains(t, err, "access denied")
}
