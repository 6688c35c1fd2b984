package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/ruteri/spl-token-provisioner/interfaces"
)

// S3Backend implements a storage backend using Amazon S3 or compatible services.
// Objects are uploaded with a public-read ACL so wallets can resolve them.
type S3Backend struct {
	client      *s3.S3
	bucketName  string
	prefix      string
	region      string
	endpoint    string
	log         *slog.Logger
	locationURI string
}

// NewS3Backend creates a new S3 storage backend.
// When accessKey and secretKey are empty the AWS default credential chain is used.
func NewS3Backend(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Backend, error) {
	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	if accessKey != "" {
		uri = fmt.Sprintf("s3://%s:***@%s/%s?region=%s", accessKey, bucketName, prefix, region)
	}
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	cfg := aws.Config{
		Region: aws.String(region),
	}

	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Backend{
		client:      s3.New(sess),
		bucketName:  bucketName,
		prefix:      strings.Trim(prefix, "/"),
		region:      region,
		endpoint:    strings.TrimSuffix(endpoint, "/"),
		log:         log,
		locationURI: uri,
	}, nil
}

// Store uploads data to S3 and returns its content identifier and public object URL.
func (b *S3Backend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.StoredContent, error) {
	start := time.Now()
	id := interfaces.ComputeID(data)
	mime := mimeType(data, contentType)
	key := b.getObjectKey(id, mime)

	_, err := b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mime),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		b.log.Error("Failed to upload object to S3",
			slog.String("bucket", b.bucketName),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return interfaces.StoredContent{ID: id}, fmt.Errorf("failed to upload object to S3: %w", err)
	}

	b.log.Debug("Stored content in S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.String("contentID", id.String()),
		slog.Duration("duration", time.Since(start)))

	return interfaces.StoredContent{ID: id, URI: b.objectURL(key)}, nil
}

// Available checks if the S3 backend is accessible by attempting to head the bucket.
func (b *S3Backend) Available(ctx context.Context) bool {
	start := time.Now()

	_, err := b.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucketName),
	})

	if err != nil {
		b.log.Warn("S3 backend unavailable",
			slog.String("bucket", b.bucketName),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return false
	}

	return true
}

// Name returns a unique identifier for this storage backend.
func (b *S3Backend) Name() string {
	return fmt.Sprintf("s3-%s", b.bucketName)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *S3Backend) LocationURI() string {
	return b.locationURI
}

// getObjectKey generates an S3 object key based on content ID and MIME type.
func (b *S3Backend) getObjectKey(id interfaces.ContentID, mime string) string {
	name := objectName(id, mime)
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

// objectURL returns the public URL of an object. Custom endpoints use path-style
// addressing, AWS uses virtual-hosted style.
func (b *S3Backend) objectURL(key string) string {
	if b.endpoint != "" {
		base := b.endpoint
		if !strings.Contains(base, "://") {
			base = "https://" + base
		}
		return fmt.Sprintf("%s/%s/%s", base, b.bucketName, (&url.URL{Path: key}).EscapedPath())
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucketName, b.region, (&url.URL{Path: key}).EscapedPath())
}
