package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const fakeArchiveBucket = "feedlot-archive"

// newFakeArchive wires a Store at an in-memory transport so the report
// archive can be exercised without a bucket. The transport speaks just
// enough of the S3 REST dialect for Head, Get, Put, Delete, and
// ListObjectsV2; anything else answers 501.
func newFakeArchive() *Store {
	transport := &archiveTransport{objects: make(map[string]archivedObject)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: transport}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://s3.feedlot.test")
	})
	return &Store{client: client, bucket: fakeArchiveBucket, presign: s3.NewPresignClient(client)}
}

type archiveTransport struct{ objects map[string]archivedObject }

type archivedObject struct {
	body        []byte
	contentType string
}

func (a *archiveTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Path style: /<bucket>/<key>.
	_, key, _ := strings.Cut(strings.TrimPrefix(req.URL.Path, "/"), "/")

	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		return a.listObjects(req.URL.Query().Get("prefix")), nil
	}
	switch req.Method {
	case http.MethodHead:
		obj, ok := a.objects[key]
		if !ok {
			return plainResponse(http.StatusNotFound), nil
		}
		resp := plainResponse(http.StatusOK)
		resp.Header.Set("Content-Length", strconv.Itoa(len(obj.body)))
		resp.Header.Set("Content-Type", obj.contentType)
		resp.Header.Set("ETag", `"archive-rev-1"`)
		resp.Header.Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		return resp, nil
	case http.MethodPut:
		payload, _ := io.ReadAll(req.Body)
		if decoded, ok := decodeAWSChunked(payload); ok {
			payload = decoded
		}
		a.objects[key] = archivedObject{body: payload, contentType: req.Header.Get("Content-Type")}
		resp := plainResponse(http.StatusOK)
		resp.Header.Set("ETag", `"archive-rev-1"`)
		return resp, nil
	case http.MethodGet:
		obj, ok := a.objects[key]
		if !ok {
			return plainResponse(http.StatusNotFound), nil
		}
		resp := plainResponse(http.StatusOK)
		resp.Body = io.NopCloser(bytes.NewReader(obj.body))
		resp.Header.Set("Content-Length", strconv.Itoa(len(obj.body)))
		resp.Header.Set("Content-Type", obj.contentType)
		resp.Header.Set("ETag", `"archive-rev-1"`)
		resp.Header.Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		return resp, nil
	case http.MethodDelete:
		delete(a.objects, key)
		return plainResponse(http.StatusNoContent), nil
	}
	return plainResponse(http.StatusNotImplemented), nil
}

func (a *archiveTransport) listObjects(prefix string) *http.Response {
	var keys []string
	for k := range a.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2026-01-01T00:00:00Z</LastModified></Contents>", k, len(a.objects[k].body))
	}
	b.WriteString("</ListBucketResult>")
	resp := plainResponse(http.StatusOK)
	resp.Body = io.NopCloser(strings.NewReader(b.String()))
	resp.Header.Set("Content-Type", "application/xml")
	return resp
}

func plainResponse(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}
}

// decodeAWSChunked unwraps the single-chunk aws-chunked framing the SDK
// emits for streamed uploads: <hex size>\r\n<body>\r\n0\r\n...
func decodeAWSChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 || parts[2] != "0" {
		return nil, false
	}
	size, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size {
		return nil, false
	}
	return []byte(parts[1]), true
}
