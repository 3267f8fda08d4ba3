package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Archiver keeps a durable record of each generation run.
type Archiver interface {
	Archive(ctx context.Context, summary *GenerationSummary) error
}

type noopArchiver struct{}

// NoopArchiver discards summaries.
func NoopArchiver() Archiver { return noopArchiver{} }

func (noopArchiver) Archive(context.Context, *GenerationSummary) error { return nil }

// S3Archiver writes summaries as JSON objects under generations/<campaign>/.
type S3Archiver struct {
	client s3iface.S3API
	bucket string
}

func NewS3Archiver(region, bucket string) (*S3Archiver, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3ArchiverWithClient(s3.New(sess), bucket), nil
}

func NewS3ArchiverWithClient(client s3iface.S3API, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket}
}

func archiveKey(s *GenerationSummary) string {
	return fmt.Sprintf("generations/%s/%s.json", s.CampaignID, s.GenerationID)
}

func (a *S3Archiver) Archive(ctx context.Context, summary *GenerationSummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode generation summary: %w", err)
	}

	_, err = a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(archiveKey(summary)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive generation to S3: %w", err)
	}
	return nil
}
