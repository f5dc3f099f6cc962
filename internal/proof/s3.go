package proof

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultTimeout = 30 * time.Second

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	URLExpiry       time.Duration
}

// S3Store keeps proofs in an S3 compatible bucket and hands out presigned
// download links.
type S3Store struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	prefix    string
	urlExpiry time.Duration
	now       func() time.Time
}

func NewS3Store(conf *S3Config) (*S3Store, error) {
	if conf == nil {
		return nil, errors.New("configuration is required")
	}
	if conf.AccessKeyID == "" || conf.SecretAccessKey == "" || conf.Bucket == "" {
		return nil, errors.New("missing required configuration: access key, secret key and bucket are required")
	}

	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		conf.AccessKeyID,
		conf.SecretAccessKey,
		"",
	))

	opts := s3.Options{
		Region:           conf.Region,
		Credentials:      creds,
		RetryMode:        aws.RetryModeStandard,
		RetryMaxAttempts: 1,
	}
	if conf.Endpoint != "" {
		opts.BaseEndpoint = aws.String(conf.Endpoint)
		opts.UsePathStyle = true
	}
	client := s3.New(opts)

	expiry := conf.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(conf.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to access bucket %s: %w", conf.Bucket, err)
	}

	return &S3Store{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    conf.Bucket,
		prefix:    conf.Prefix,
		urlExpiry: expiry,
		now:       time.Now,
	}, nil
}

func (s *S3Store) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	ref := objectKey(s.now().UTC(), name)

	// The SDK signs the payload and needs a seekable body of known length
	buf := bytes.NewBuffer(make([]byte, 0, 64*1024))
	if _, err := io.Copy(buf, r); err != nil {
		return "", fmt.Errorf("read proof: %w", err)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.prefix + ref),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload proof to S3: %w", err)
	}
	return ref, nil
}

func (s *S3Store) URL(ref string) string {
	if !validRef(ref) {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + ref),
	}, s3.WithPresignExpires(s.urlExpiry))
	if err != nil {
		log.Printf("[S3] presign %s: %v", ref, err)
		return ""
	}
	return req.URL
}

func (s *S3Store) Delete(ctx context.Context, ref string) error {
	if !validRef(ref) {
		return ErrBadRef
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + ref),
	})
	if err != nil {
		return fmt.Errorf("delete proof from S3: %w", err)
	}
	return nil
}
