// Package publish uploads finished analysis output to object storage.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/sirupsen/logrus"
)

// yodaContentType is the media type attached to uploaded YODA files.
const yodaContentType = "text/plain; charset=utf-8"

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Location is a bucket/key pair parsed from an s3:// URI.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseS3URI parses "s3://bucket/key". A key ending in "/" is a prefix and
// gets the base name of fallbackName appended.
func ParseS3URI(uri, fallbackName string) (Location, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("parsing upload URI %q: %w", uri, err)
	}
	if u.Scheme != "s3" {
		return Location{}, fmt.Errorf("upload URI %q: scheme must be s3", uri)
	}
	if u.Host == "" {
		return Location{}, fmt.Errorf("upload URI %q: missing bucket", uri)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		name := fallbackName
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		if name == "" {
			return Location{}, fmt.Errorf("upload URI %q: missing object key", uri)
		}
		key += name
	}
	return Location{Bucket: u.Host, Key: key}, nil
}

// Uploader copies files from a billy filesystem to S3.
type Uploader struct {
	client PutObjectAPI
	fs     billy.Filesystem
}

// NewUploader returns an uploader reading from fs.
func NewUploader(client PutObjectAPI, fs billy.Filesystem) *Uploader {
	return &Uploader{client: client, fs: fs}
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return s3.NewFromConfig(cfg), nil
}

// Upload reads path from the filesystem and stores it at loc.
func (u *Uploader) Upload(ctx context.Context, path string, loc Location) error {
	data, err := util.ReadFile(u.fs, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(loc.Bucket),
		Key:           aws.String(loc.Key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(yodaContentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s to %s: %w", path, loc, err)
	}
	logrus.Infof("publish: uploaded %s (%d bytes) to %s", path, len(data), loc)
	return nil
}
