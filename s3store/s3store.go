/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 *
 * Package s3store keeps schedule documents in an Amazon S3 bucket. It
 * implements the httpcache.Cache interface so it can be swapped for the
 * in-memory and on-disk backends of package store.
 */
package s3store

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const PathPrefix = "schedules"

// Cache objects store and retrieve data using Amazon S3.
type Cache struct {
	// Config is the Amazon S3 configuration.
	Config aws.Config

	// Client is the s3 client used when interacting with S3. Init() sets it
	// from the default Config; callers may substitute their own.
	Client *s3.Client

	bucketName string

	// gzip indicates whether objects are compressed; compressed object keys
	// carry a ".gz" suffix.
	gzip bool

	logErrors bool

	ctx context.Context
}

// Get returns the object stored under key. A missing object is reported as
// ok=false without logging.
func (c *Cache) Get(key string) ([]byte, bool) {
	data, _, ok := c.GetVersion(key)
	return data, ok
}

// GetVersion returns the object stored under key along with its ETag.
func (c *Cache) GetVersion(key string) ([]byte, string, bool) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
	}

	resp, err := c.Client.GetObject(c.ctx, input)
	if err != nil {
		if c.logErrors {
			var apiErr smithy.APIError
			if !(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey") {
				log.Printf("s3store.get: failed to get object %v/%v: %v",
					*input.Bucket, *input.Key, err)
			}
		}
		return nil, "", false
	}
	defer resp.Body.Close()

	rdr := resp.Body
	if c.gzip {
		rdr, err = gzip.NewReader(rdr)
		if err != nil {
			if c.logErrors {
				log.Printf("s3store.get: failed to open compressed object %v/%v: %v",
					*input.Bucket, *input.Key, err)
			}
			return nil, "", false
		}

		defer rdr.Close()
	}
	data, err := io.ReadAll(rdr)
	if err != nil {
		if c.logErrors {
			log.Printf("s3store.get: failed to read object %v/%v: %v",
				*input.Bucket, *input.Key, err)
		}
		return nil, "", false
	}

	return data, aws.ToString(resp.ETag), true
}

func (c *Cache) putInput(key string, data []byte) (*s3.PutObjectInput, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(c.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
	if !c.gzip {
		return input, nil
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to gzip data for %v/%v: %w",
			*input.Bucket, *input.Key, err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer for %v/%v: %w",
			*input.Bucket, *input.Key, err)
	}
	input.Body = &buf
	input.ContentEncoding = aws.String("gzip")

	return input, nil
}

// Set stores data under key.
func (c *Cache) Set(key string, data []byte) {
	input, err := c.putInput(key, data)
	if err != nil {
		if c.logErrors {
			log.Printf("s3store.set: %v", err)
		}
		return
	}

	_, err = c.Client.PutObject(c.ctx, input)
	if err != nil && c.logErrors {
		log.Printf("s3store.set: put failed for %v/%v: %v", *input.Bucket,
			*input.Key, err)
	}
}

// SetIfVersion stores data under key only if the object's ETag still equals
// version; an empty version requires the object to be absent. ok is false
// when another writer got there first.
func (c *Cache) SetIfVersion(key string, data []byte, version string) (bool, error) {
	input, err := c.putInput(key, data)
	if err != nil {
		return false, fmt.Errorf("s3store.set: %w", err)
	}
	if version == "" {
		input.IfNoneMatch = aws.String("*")
	} else {
		input.IfMatch = aws.String(version)
	}

	_, err = c.Client.PutObject(c.ctx, input)
	if err == nil {
		return true, nil
	}
	if isConditionFailure(err) {
		return false, nil
	}
	return false, fmt.Errorf("s3store.set: conditional put failed for %v/%v: %w",
		*input.Bucket, *input.Key, err)
}

// isConditionFailure reports whether a conditional write lost against a
// concurrent writer.
func isConditionFailure(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}

func (c *Cache) Delete(key string) {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
	}

	_, err := c.Client.DeleteObject(c.ctx, input)
	if err != nil && c.logErrors {
		log.Printf("s3store.delete: delete failed for %v/%v: %v",
			*input.Bucket, *input.Key, err)
	}
}

// objectKey maps a store key to a readable object key, e.g. "Gruppe 1" ->
// "schedules/Gruppe%201.json".
func (c *Cache) objectKey(key string) string {
	objKey := fmt.Sprintf("%v/%v.json", PathPrefix, url.PathEscape(key))
	if c.gzip {
		objKey += ".gz"
	}

	return objKey
}

// New returns a new Cache with underlying storage in the specified Amazon S3
// bucket. Callers must invoke Init() on the returned Cache before use.
func New(ctxIn context.Context, bucketNameIn string, gzipIn bool,
	logErrorsIn bool) *Cache {

	return &Cache{
		ctx:        ctxIn,
		bucketName: bucketNameIn,
		gzip:       gzipIn,
		logErrors:  logErrorsIn,
	}
}

// Init loads the default AWS configuration (environment variables, then
// the shared configuration and credentials files) and verifies the bucket
// is reachable.
func (c *Cache) Init() error {
	var err error
	c.Config, err = config.LoadDefaultConfig(c.ctx)
	if err != nil {
		return fmt.Errorf("s3store.init: failed to load AWS config: %w", err)
	}
	c.Client = s3.NewFromConfig(c.Config)

	if _, err = c.Client.HeadBucket(c.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucketName),
	}); err != nil {
		return fmt.Errorf("s3store.init: head bucket failed for %s: %w", c.bucketName, err)
	}

	if _, err = c.Client.ListObjectsV2(c.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucketName),
		Prefix:  aws.String(PathPrefix + "/"),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3store.init: list objects failed for %s: %w", c.bucketName, err)
	}

	return nil
}
