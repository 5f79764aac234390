package dto

import (
	"time"

	"shortener/internal/domain/models"
)

// LinkRecord is the persisted shape of a binding, shared by the file log,
// the Redis cache and the DynamoDB item.
type LinkRecord struct {
	ShortCode string    `json:"short_code" dynamodbav:"short_code"`
	LongURL   string    `json:"long_url" dynamodbav:"long_url"`
	CreatedAt time.Time `json:"created_at,omitempty" dynamodbav:"created_at,unixtime"`
}

func (r LinkRecord) ToDomain() models.Link {
	return models.Link{
		ShortCode: r.ShortCode,
		LongURL:   r.LongURL,
		CreatedAt: r.CreatedAt,
	}
}

func FromDomain(link models.Link) LinkRecord {
	return LinkRecord{
		ShortCode: link.ShortCode,
		LongURL:   link.LongURL,
		CreatedAt: link.CreatedAt,
	}
}
