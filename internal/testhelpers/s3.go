package testhelpers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pageza/alchemorsel-import/backend/config"
)

// FakeBucket is the bucket name served by FakeS3
const FakeBucket = "test-bucket"

// StoredObject is an object held by FakeS3
type StoredObject struct {
	Data        []byte
	ContentType string
	Owner       string
}

// FakeS3 is a path-style S3 endpoint holding objects in memory
type FakeS3 struct {
	mu      sync.Mutex
	objects map[string]StoredObject
	chunked bool
}

// NewFakeS3 starts a fake endpoint and returns a client config pointing at it
func NewFakeS3(t *testing.T, publicBaseURL string) (*FakeS3, *config.S3Config) {
	t.Helper()
	fake := &FakeS3{objects: map[string]StoredObject{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		Retryer:      aws.NopRetryer{},
	})
	return fake, &config.S3Config{
		Client:        client,
		BucketName:    FakeBucket,
		PublicBaseURL: publicBaseURL,
	}
}

// Object returns a stored object by key
func (f *FakeS3) Object(key string) (StoredObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[key]
	return obj, ok
}

// StreamWithoutLength makes GET responses chunked with no Content-Length, as
// some S3-compatible servers send them
func (f *FakeS3) StreamWithoutLength() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunked = true
}

func (f *FakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/"+FakeBucket+"/")

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[key] = StoredObject{
			Data:        data,
			ContentType: r.Header.Get("Content-Type"),
			Owner:       r.Header.Get("X-Amz-Meta-Owner"),
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodHead, http.MethodGet:
		obj, ok := f.objects[key]
		if !ok {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", obj.ContentType)
		if f.chunked && r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			w.(http.Flusher).Flush()
			_, _ = w.Write(obj.Data)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(obj.Data)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
