package adapters

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"slide-narrator/application/ports/outbound"
	"slide-narrator/config"
	"slide-narrator/domain"
)

type dynamoBuildItem struct {
	BuildId       string  `dynamodbav:"build_id"`
	SlidePath     string  `dynamodbav:"slide_path"`
	VideoLocation string  `dynamodbav:"video_location,omitempty"`
	Pages         int     `dynamodbav:"pages"`
	Pairs         int     `dynamodbav:"pairs"`
	Duration      float64 `dynamodbav:"duration"`
	Status        string  `dynamodbav:"status"`
	Error         string  `dynamodbav:"error,omitempty"`
	StartedAt     string  `dynamodbav:"started_at"`
	FinishedAt    string  `dynamodbav:"finished_at,omitempty"`
	TTL           int64   `dynamodbav:"ttl"`
}

type dynamoBuildRecorder struct {
	logger       outbound.LoggerPort
	dynamoSvc    dynamodbiface.DynamoDBAPI
	dynamoConfig *config.DynamoConfig
	now          func() time.Time
}

func NewDynamoBuildRecorder(dynamoSvc dynamodbiface.DynamoDBAPI, dynamoConfig *config.DynamoConfig, logger outbound.LoggerPort) outbound.BuildRecorderPort {
	return &dynamoBuildRecorder{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
		now:          time.Now,
	}
}

func (c *dynamoBuildRecorder) Save(ctx context.Context, record domain.BuildRecord) error {
	item := dynamoBuildItem{
		BuildId:       record.BuildID,
		SlidePath:     record.SlidePath,
		VideoLocation: record.VideoLocation,
		Pages:         record.Pages,
		Pairs:         record.Pairs,
		Duration:      record.Duration,
		Status:        string(record.Status),
		Error:         record.Error,
		StartedAt:     record.StartedAt.UTC().Format(time.RFC3339),
		TTL:           c.now().Add(time.Duration(c.dynamoConfig.TtlMinutes) * time.Minute).Unix(),
	}
	if !record.FinishedAt.IsZero() {
		item.FinishedAt = record.FinishedAt.UTC().Format(time.RFC3339)
	}

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to marshal build item", map[string]interface{}{
			"build_id": record.BuildID,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(c.dynamoConfig.TableName),
	}

	_, err = c.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to save build item", map[string]interface{}{
			"build_id": record.BuildID,
			"table":    c.dynamoConfig.TableName,
		})
		return err
	}

	return nil
}
