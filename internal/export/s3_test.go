/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type storedObject struct {
	body        []byte
	contentType string
}

// memS3 answers PutObject requests against an in-memory bucket.
type memS3 struct {
	mu      sync.Mutex
	objects map[string]storedObject
	fail    bool
}

func (m *memS3) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.fail {
		return &http.Response{StatusCode: http.StatusForbidden, Body: io.NopCloser(strings.NewReader(
			`<?xml version="1.0"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)),
			Header: http.Header{"Content-Type": {"application/xml"}}}, nil
	}
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	body, _ := io.ReadAll(req.Body)
	if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") {
		body = decodeAWSChunked(body)
	}
	m.mu.Lock()
	m.objects[strings.TrimPrefix(req.URL.Path, "/")] = storedObject{body: body, contentType: req.Header.Get("Content-Type")}
	m.mu.Unlock()
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
}

// decodeAWSChunked strips the aws-chunked framing: <hex>[;ext]\r\n<data>\r\n ... 0\r\n<trailers>.
func decodeAWSChunked(b []byte) []byte {
	var out []byte
	for len(b) > 0 {
		i := bytes.Index(b, []byte("\r\n"))
		if i < 0 {
			break
		}
		sizeField := string(b[:i])
		if j := strings.IndexByte(sizeField, ';'); j >= 0 {
			sizeField = sizeField[:j]
		}
		n, err := strconv.ParseInt(strings.TrimSpace(sizeField), 16, 64)
		if err != nil || n == 0 {
			break
		}
		b = b[i+2:]
		if int64(len(b)) < n {
			break
		}
		out = append(out, b[:n]...)
		b = bytes.TrimPrefix(b[n:], []byte("\r\n"))
	}
	return out
}

func newMemS3Sink(t *testing.T, rt *memS3, prefix string) *S3Sink {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", t.TempDir()+"/none")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", t.TempDir()+"/none")
	sink, err := NewS3Sink(context.Background(), S3Config{
		Bucket:          "bf-exports",
		Region:          "us-east-1",
		Endpoint:        "https://mock.s3.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		KeyPrefix:       prefix,
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
	})
	if err != nil {
		t.Fatalf("NewS3Sink: %v", err)
	}
	return sink
}

func TestS3Sink_PutStoresObjectUnderPrefix(t *testing.T) {
	rt := &memS3{objects: map[string]storedObject{}}
	sink := newMemS3Sink(t, rt, "/projects/")
	if got := sink.Key("demo.json"); got != "projects/demo.json" {
		t.Fatalf("Key = %q, want projects/demo.json", got)
	}
	payload := `{"project":"demo"}`
	if err := sink.Put(context.Background(), "demo.json", MimeJSON, []byte(payload)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	obj, ok := rt.objects["bf-exports/projects/demo.json"]
	if !ok {
		t.Fatalf("object not stored; have %v", rt.objects)
	}
	if string(obj.body) != payload {
		t.Fatalf("body = %q, want %q", obj.body, payload)
	}
	if obj.contentType != MimeJSON {
		t.Fatalf("content type = %q, want %q", obj.contentType, MimeJSON)
	}
}

func TestS3Sink_PutPropagatesServiceError(t *testing.T) {
	rt := &memS3{objects: map[string]storedObject{}, fail: true}
	sink := newMemS3Sink(t, rt, "")
	if err := sink.Put(context.Background(), "demo.json", MimeJSON, []byte("{}")); err == nil {
		t.Fatalf("expected error from denied put")
	}
}

func TestNewS3Sink_RequiresBucket(t *testing.T) {
	if _, err := NewS3Sink(context.Background(), S3Config{}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}
