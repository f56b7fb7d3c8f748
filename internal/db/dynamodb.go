//go:generate go run go.uber.org/mock/mockgen -source=dynamodb.go -destination=../mocks/mock_db.go -package=mocks
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/moodflow/internal/models"
)

const (
	MAX_BATCH_SIZE  = 25
	MAX_RETRIES     = 3
	RESULT_TTL      = 24 * time.Hour
	INITIAL_BACKOFF = 500 * time.Millisecond
)

// BatchWriter is the subset of the DynamoDB client the store needs.
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type EmotionStore struct {
	client  BatchWriter
	table   string
	backoff time.Duration
	now     func() time.Time
}

func NewEmotionStore(client BatchWriter, table string) *EmotionStore {
	return &EmotionStore{
		client:  client,
		table:   table,
		backoff: INITIAL_BACKOFF,
		now:     time.Now,
	}
}

// BatchInsertEmotionResults writes results in chunks of 25, retrying
// unprocessed items with exponential backoff.
func (s *EmotionStore) BatchInsertEmotionResults(ctx context.Context, results []models.SessionEmotionResult) error {
	for i := 0; i < len(results); i += MAX_BATCH_SIZE {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := min(i+MAX_BATCH_SIZE, len(results))
		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, result := range results[i:end] {
			item, err := s.ResultToDynamoDBItem(result)
			if err != nil {
				return err
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := s.writeChunk(ctx, writeRequests); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored emotion results",
		slog.Int("count", len(results)))
	return nil
}

func (s *EmotionStore) writeChunk(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			s.table: writeRequests,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to batch write emotion results: %w", err)
	}

	retryCount := 0
	backoff := s.backoff
	for len(out.UnprocessedItems) > 0 && retryCount < MAX_RETRIES {
		time.Sleep(backoff)
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed emotion results...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[s.table])))

		out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("failed to retry batch write: %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[s.table]); remaining > 0 {
		slog.Error("[DynamoDB] Some emotion results failed after retries",
			slog.Int("remaining", remaining))
		return fmt.Errorf("%d emotion results left unprocessed", remaining)
	}
	return nil
}

// ResultToDynamoDBItem uses the JSON field names as attribute names and adds
// created_at and a ttl for expiry.
func (s *EmotionStore) ResultToDynamoDBItem(result models.SessionEmotionResult) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMapWithOptions(result, func(o *attributevalue.EncoderOptions) {
		o.TagKey = "json"
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal emotion result: %w", err)
	}

	now := s.now()
	item["created_at"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)}
	item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(RESULT_TTL).Unix(), 10)}
	return item, nil
}
