package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"fitresume/internal/shared/storage/object"
)

type fakeClient struct {
	put  *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeClient) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeClient) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(f.body)))}, nil
}

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "resumes/cv.pdf", want: "resumes/cv.pdf"},
		{name: "prefix", prefix: "fitresume", key: "resumes/cv.pdf", want: "fitresume/resumes/cv.pdf"},
		{name: "slashes trimmed", prefix: "/fitresume/", key: "/resumes/cv.pdf", want: "fitresume/resumes/cv.pdf"},
		{name: "empty key", prefix: "fitresume", key: "", want: "fitresume"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestSaveUsesKMSWhenConfigured(t *testing.T) {
	client := &fakeClient{}
	store := NewWithClient(client, "bucket", " uploads/ ", "kms-key")

	key, size, mime, err := store.Save(context.Background(), "resumes", "cv.pdf", strings.NewReader("%PDF-1.7 data"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(key, "resumes/") || strings.HasPrefix(key, "uploads/") {
		t.Fatalf("storage key should be namespace relative, got %q", key)
	}
	if got := aws.ToString(client.put.Key); got != "uploads/"+key {
		t.Fatalf("unexpected object key %q", got)
	}
	if client.put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(client.put.SSEKMSKeyId) != "kms-key" {
		t.Fatalf("expected kms encryption, got %q", client.put.ServerSideEncryption)
	}
	if size != int64(len("%PDF-1.7 data")) || string(client.body) != "%PDF-1.7 data" {
		t.Fatalf("unexpected body size=%d body=%q", size, client.body)
	}
	if mime != object.MimePDF {
		t.Fatalf("unexpected mime %q", mime)
	}
}

func TestSaveDefaultsToSSES3(t *testing.T) {
	client := &fakeClient{}
	store := NewWithClient(client, "bucket", "", "")
	if _, _, _, err := store.Save(context.Background(), "resumes", "cv.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if client.put.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256, got %q", client.put.ServerSideEncryption)
	}
}

func TestOpenMapsNoSuchKey(t *testing.T) {
	store := NewWithClient(&fakeClient{err: &s3types.NoSuchKey{}}, "bucket", "", "")
	_, err := store.Open(context.Background(), "resumes/missing.pdf")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
