package dynamostore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shortener/internal/domain/models"
	"shortener/internal/mocks"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTable = "short_links"

func newTestStorage(t *testing.T) (*mocks.MockAPI, *Storage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	s := NewStorage(api, testTable)
	s.now = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return api, s
}

func TestStorage_PutIfAbsent(t *testing.T) {
	tests := []struct {
		name    string
		putErr  error
		wantOK  bool
		wantErr bool
	}{
		{name: "inserted", wantOK: true},
		{
			name:   "code taken",
			putErr: &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")},
			wantOK: false,
		},
		{name: "throttled", putErr: errors.New("ProvisionedThroughputExceededException"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, s := newTestStorage(t)

			api.EXPECT().
				PutItem(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
					assert.Equal(t, testTable, aws.ToString(in.TableName))
					assert.Equal(t, "attribute_not_exists(short_code)", aws.ToString(in.ConditionExpression))
					assert.Equal(t, &types.AttributeValueMemberS{Value: "abc123"}, in.Item["short_code"])
					assert.Equal(t, &types.AttributeValueMemberS{Value: "https://example.com"}, in.Item["long_url"])
					assert.Equal(t, &types.AttributeValueMemberN{Value: "1700000000"}, in.Item["created_at"])
					return &dynamodb.PutItemOutput{}, tt.putErr
				})

			ok, err := s.PutIfAbsent(context.Background(), models.Link{ShortCode: "abc123", LongURL: "https://example.com"})
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestStorage_PutIfAbsent_InvalidLink(t *testing.T) {
	_, s := newTestStorage(t)

	_, err := s.PutIfAbsent(context.Background(), models.Link{ShortCode: "abc123"})
	assert.ErrorIs(t, err, models.ErrInvalidData)
}

func TestStorage_Get(t *testing.T) {
	tests := []struct {
		name    string
		out     *dynamodb.GetItemOutput
		getErr  error
		want    models.Link
		wantErr error
	}{
		{
			name: "found",
			out: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
				"short_code": &types.AttributeValueMemberS{Value: "abc123"},
				"long_url":   &types.AttributeValueMemberS{Value: "https://example.com"},
				"created_at": &types.AttributeValueMemberN{Value: "1700000000"},
			}},
			want: models.Link{
				ShortCode: "abc123",
				LongURL:   "https://example.com",
				CreatedAt: time.Unix(1700000000, 0),
			},
		},
		{
			name:    "missing",
			out:     &dynamodb.GetItemOutput{},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, s := newTestStorage(t)

			api.EXPECT().
				GetItem(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
					assert.Equal(t, testTable, aws.ToString(in.TableName))
					assert.True(t, aws.ToBool(in.ConsistentRead))
					assert.Equal(t, &types.AttributeValueMemberS{Value: "abc123"}, in.Key["short_code"])
					return tt.out, tt.getErr
				})

			got, err := s.Get(context.Background(), "abc123")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.ShortCode, got.ShortCode)
			assert.Equal(t, tt.want.LongURL, got.LongURL)
			assert.True(t, tt.want.CreatedAt.Equal(got.CreatedAt))
		})
	}
}

func TestStorage_Get_BackendError(t *testing.T) {
	api, s := newTestStorage(t)
	api.EXPECT().GetItem(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := s.Get(context.Background(), "abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestStorage_Get_OversizedKey(t *testing.T) {
	_, s := newTestStorage(t)

	// No GetItem expectation: the key must never reach DynamoDB.
	_, err := s.Get(context.Background(), strings.Repeat("a", maxKeyBytes+1))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_Ping(t *testing.T) {
	api, s := newTestStorage(t)
	api.EXPECT().DescribeTable(gomock.Any(), gomock.Any()).Return(&dynamodb.DescribeTableOutput{}, nil)
	assert.NoError(t, s.Ping(context.Background()))

	api.EXPECT().DescribeTable(gomock.Any(), gomock.Any()).Return(nil, &types.ResourceNotFoundException{Message: aws.String("no table")})
	assert.Error(t, s.Ping(context.Background()))
}

func TestStorage_Migrate(t *testing.T) {
	t.Run("creates and waits for table", func(t *testing.T) {
		api, s := newTestStorage(t)

		api.EXPECT().
			CreateTable(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
				assert.Equal(t, testTable, aws.ToString(in.TableName))
				require.Len(t, in.KeySchema, 1)
				assert.Equal(t, "short_code", aws.ToString(in.KeySchema[0].AttributeName))
				assert.Equal(t, types.KeyTypeHash, in.KeySchema[0].KeyType)
				assert.Equal(t, types.BillingModePayPerRequest, in.BillingMode)
				return &dynamodb.CreateTableOutput{}, nil
			})
		api.EXPECT().
			DescribeTable(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusActive}}, nil)

		assert.NoError(t, s.Migrate(context.Background()))
	})

	t.Run("existing table is fine", func(t *testing.T) {
		api, s := newTestStorage(t)
		api.EXPECT().
			CreateTable(gomock.Any(), gomock.Any()).
			Return(nil, &types.ResourceInUseException{Message: aws.String("Table already exists")})

		assert.NoError(t, s.Migrate(context.Background()))
	})
}
