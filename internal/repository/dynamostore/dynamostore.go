package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortener/internal/domain/models"
	"shortener/internal/repository/dto"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	attrShortCode      = "short_code"
	conditionNotExists = "attribute_not_exists(short_code)"
	tableReadyTimeout  = 2 * time.Minute

	// DynamoDB rejects partition keys above this size with a ValidationException.
	maxKeyBytes = 2048
)

// API is the slice of the DynamoDB client the store needs.
//
//go:generate mockgen -destination=../../mocks/mock_dynamo_api.go -package=mocks shortener/internal/repository/dynamostore API
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Storage keeps one item per binding keyed by short_code. The conditional
// PutItem is what makes concurrent creates from separate functions safe.
type Storage struct {
	client API
	table  string
	now    func() time.Time
}

func NewStorage(client API, table string) *Storage {
	return &Storage{
		client: client,
		table:  table,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NewClient builds a DynamoDB client from the default AWS credential chain.
// A non-empty endpoint points it at a local DynamoDB.
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func (s *Storage) PutIfAbsent(ctx context.Context, link models.Link) (bool, error) {
	if link.ShortCode == "" || link.LongURL == "" {
		return false, models.ErrInvalidData
	}

	if link.CreatedAt.IsZero() {
		link.CreatedAt = s.now()
	}

	item, err := attributevalue.MarshalMap(dto.FromDomain(link))
	if err != nil {
		return false, fmt.Errorf("failed to encode link: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String(conditionNotExists),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("failed to put link: %w", err)
	}

	return true, nil
}

func (s *Storage) Get(ctx context.Context, shortCode string) (models.Link, error) {
	if shortCode == "" {
		return models.Link{}, models.ErrInvalidData
	}
	if len(shortCode) > maxKeyBytes {
		return models.Link{}, models.ErrNotFound
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			attrShortCode: &types.AttributeValueMemberS{Value: shortCode},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return models.Link{}, fmt.Errorf("failed to get link: %w", err)
	}

	if len(out.Item) == 0 {
		return models.Link{}, models.ErrNotFound
	}

	var rec dto.LinkRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return models.Link{}, fmt.Errorf("failed to decode link: %w", err)
	}

	return rec.ToDomain(), nil
}

func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return fmt.Errorf("dynamodb ping failed: %w", err)
	}
	return nil
}

// Migrate creates the on-demand table keyed by short_code and waits until it
// is active. An existing table is left as is.
func (s *Storage) Migrate(ctx context.Context) error {
	_, err := s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrShortCode), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrShortCode), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("failed to create table: %w", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)}, tableReadyTimeout); err != nil {
		return fmt.Errorf("table %s not ready: %w", s.table, err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Storage) Close() error {
	return nil
}
