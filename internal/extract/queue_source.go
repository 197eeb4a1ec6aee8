package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/domain"
	"github.com/BarkinBalci/bi-warehouse/internal/queue"
)

// QueueSourceConfig configures the queue drain
type QueueSourceConfig struct {
	MaxMessages     int32
	WaitTimeSeconds int32
	MaxCustomers    int
}

// QueueSource drains customer messages from a queue. A message body holds
// one customer object or an array of them.
type QueueSource struct {
	consumer queue.QueueConsumer
	parser   CustomerParser
	config   QueueSourceConfig
	log      *zap.Logger
}

// NewQueueSource creates a new queue-backed customer source
func NewQueueSource(consumer queue.QueueConsumer, parser CustomerParser, config QueueSourceConfig, log *zap.Logger) *QueueSource {
	return &QueueSource{
		consumer: consumer,
		parser:   parser,
		config:   config,
		log:      log,
	}
}

func (s *QueueSource) Name() string {
	return "sqs"
}

// FetchCustomers receives until the queue returns an empty batch or the
// customer cap is reached. Messages are deleted only after every received
// message parsed, so a failed drain leaves them on the queue.
func (s *QueueSource) FetchCustomers(ctx context.Context) ([]domain.CustomerRecord, error) {
	var (
		records  []domain.CustomerRecord
		received []types.Message
	)

	for s.config.MaxCustomers <= 0 || len(records) < s.config.MaxCustomers {
		result, err := s.consumer.ReceiveMessages(ctx, &awssqs.ReceiveMessageInput{
			QueueUrl:              aws.String(s.consumer.QueueURL()),
			MaxNumberOfMessages:   s.config.MaxMessages,
			WaitTimeSeconds:       s.config.WaitTimeSeconds,
			MessageAttributeNames: []string{"All"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to receive messages: %w", err)
		}

		if len(result.Messages) == 0 {
			break
		}

		s.log.Debug("Received messages from SQS", zap.Int("message_count", len(result.Messages)))

		for _, msg := range result.Messages {
			parsed, err := s.parseMessage(msg)
			if err != nil {
				return nil, fmt.Errorf("message %s: %w", aws.ToString(msg.MessageId), err)
			}
			records = append(records, parsed...)
			received = append(received, msg)
		}
	}

	for _, msg := range received {
		if err := s.deleteMessage(ctx, msg); err != nil {
			s.log.Warn("Failed to delete consumed message",
				zap.String("message_id", aws.ToString(msg.MessageId)),
				zap.Error(err))
		}
	}

	return records, nil
}

func (s *QueueSource) parseMessage(msg types.Message) ([]domain.CustomerRecord, error) {
	body := bytes.TrimSpace([]byte(aws.ToString(msg.Body)))
	if len(body) > 0 && body[0] == '[' {
		return s.parser.ParseList(body)
	}

	rec, err := s.parser.Parse(body)
	if err != nil {
		return nil, err
	}
	return []domain.CustomerRecord{rec}, nil
}

func (s *QueueSource) deleteMessage(ctx context.Context, msg types.Message) error {
	_, err := s.consumer.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.consumer.QueueURL()),
		ReceiptHandle: msg.ReceiptHandle,
	})
	return err
}
