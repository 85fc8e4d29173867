package storage_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/inventory-tracker/internal/adapters/storage"
	"github.com/ammerola/inventory-tracker/test/helpers"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// fakeS3 serves the handful of path-style S3 calls the storage makes
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	created bool
	objects map[string]string
	types   map[string]string
}

func newFakeS3(bucket string, exists bool) *fakeS3 {
	return &fakeS3{
		bucket:  bucket,
		created: exists,
		objects: make(map[string]string),
		types:   make(map[string]string),
	}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case key == "" && r.Method == http.MethodHead:
		if !f.created {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case key == "" && r.Method == http.MethodPut:
		f.created = true
		w.WriteHeader(http.StatusOK)
	case key == "" && r.Method == http.MethodGet:
		f.list(w, r.URL.Query().Get("prefix"))
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = string(body)
		f.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) list(w http.ResponseWriter, prefix string) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	fmt.Fprintf(&b, "<Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount>", f.bucket, prefix, len(keys))
	b.WriteString("<MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>")
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size></Contents>", k, len(f.objects[k]))
	}
	b.WriteString("</ListBucketResult>")

	w.Header().Set("Content-Type", "application/xml")
	_, _ = io.WriteString(w, b.String())
}

func newS3Storage(t *testing.T, fake *fakeS3) *storage.S3Storage {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	s, err := storage.NewS3Storage(context.Background(), &storage.S3Config{
		Region:          "us-east-1",
		Bucket:          fake.bucket,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Endpoint:        server.URL,
		UsePathStyle:    true,
	}, helpers.TestLogger())
	require.NoError(t, err)
	return s
}

func TestS3Storage_CreatesMissingBucket(t *testing.T) {
	fake := newFakeS3("inventory-exports", false)
	newS3Storage(t, fake)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.True(t, fake.created)
}

func TestS3Storage_UploadListDelete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3("inventory-exports", true)
	s := newS3Storage(t, fake)

	location, err := s.Upload(ctx, "exports/inventory-20260101T000000Z.xlsx", strings.NewReader("sheet"), xlsxType)
	require.NoError(t, err)
	assert.Contains(t, location, "exports/inventory-20260101T000000Z.xlsx")

	_, err = s.Upload(ctx, "notes/a.json", strings.NewReader("{}"), "")
	require.NoError(t, err)

	fake.mu.Lock()
	assert.Equal(t, "sheet", fake.objects["exports/inventory-20260101T000000Z.xlsx"])
	assert.Equal(t, xlsxType, fake.types["exports/inventory-20260101T000000Z.xlsx"])
	assert.Equal(t, "application/json", fake.types["notes/a.json"])
	fake.mu.Unlock()

	keys, err := s.List(ctx, "exports/")
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/inventory-20260101T000000Z.xlsx"}, keys)

	require.NoError(t, s.Delete(ctx, "exports/inventory-20260101T000000Z.xlsx"))

	keys, err = s.List(ctx, "exports/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
