package enrich

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	errspkg "github.com/brysontyrrell/voltron/internal/errors"
	"github.com/brysontyrrell/voltron/internal/jsoncodec"
	"github.com/brysontyrrell/voltron/internal/logging"
)

// Source resolves enrichment records by device serial number. A nil record
// with a nil error means no record exists: a valid outcome, not a failure.
type Source interface {
	Lookup(ctx context.Context, serialNumber string) (Record, error)
}

// SelectObjectAPI is the S3 capability used by S3Source.
type SelectObjectAPI interface {
	SelectObjectContent(ctx context.Context, params *s3.SelectObjectContentInput, optFns ...func(*s3.Options)) (*s3.SelectObjectContentOutput, error)
}

// S3Source queries a CSV object through S3 Select, filtering on exact
// serial_number equality.
type S3Source struct {
	client SelectObjectAPI
	bucket string
	key    string
	logger logging.ServiceLogger
}

// NewS3Source builds an S3Source over the given client and object location.
func NewS3Source(client SelectObjectAPI, bucket, key string, logger logging.ServiceLogger) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key, logger: logger}
}

// NewS3Client constructs the SDK client from a resolved AWS config.
func NewS3Client(awsCfg aws.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg)
}

// Lookup queries the source object for the serial number. Transport or query
// failures return a *TransportError; an absent record returns (nil, nil).
func (s *S3Source) Lookup(ctx context.Context, serialNumber string) (Record, error) {
	location := fmt.Sprintf("s3://%s/%s", s.bucket, s.key)

	expression := fmt.Sprintf(
		"SELECT * FROM S3Object s WHERE s.serial_number = '%s'",
		strings.ReplaceAll(serialNumber, "'", "''"),
	)

	out, err := s.client.SelectObjectContent(ctx, &s3.SelectObjectContentInput{
		Bucket:         aws.String(s.bucket),
		Key:            aws.String(s.key),
		ExpressionType: types.ExpressionTypeSql,
		Expression:     aws.String(expression),
		InputSerialization: &types.InputSerialization{
			CompressionType: types.CompressionTypeNone,
			CSV: &types.CSVInput{
				FileHeaderInfo:  types.FileHeaderInfoUse,
				RecordDelimiter: aws.String("\n"),
				FieldDelimiter:  aws.String(","),
			},
		},
		OutputSerialization: &types.OutputSerialization{
			JSON: &types.JSONOutput{},
		},
	})
	if err != nil {
		s.logger.Error("Unable to query enrichment data source", err, logging.LogFields{"location": location})
		return nil, errspkg.Unreachable("query enrichment source", location, err)
	}

	stream := out.GetStream()
	defer stream.Close()

	var payload []byte
	for event := range stream.Events() {
		if records, ok := event.(*types.SelectObjectContentEventStreamMemberRecords); ok {
			payload = append(payload, records.Value.Payload...)
		}
	}
	if err := stream.Err(); err != nil {
		s.logger.Error("Enrichment source stream failed", err, logging.LogFields{"location": location})
		return nil, errspkg.Unreachable("read enrichment source stream", location, err)
	}

	return decodeFirstRecord(payload)
}

// decodeFirstRecord parses the first object from a stream of newline-delimited
// JSON records. An empty payload means the serial number was not found.
func decodeFirstRecord(payload []byte) (Record, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, nil
	}

	var record Record
	if err := jsoncodec.Decode(bytes.NewReader(payload), &record); err != nil {
		return nil, fmt.Errorf("decode enrichment record: %w", err)
	}
	return record, nil
}
