package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"petcare-client/internal/ports/media"
)

type fakeS3 struct {
	s3iface.S3API

	in   *awss3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *awss3.PutObjectInput, _ ...request.Option) (*awss3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &awss3.PutObjectOutput{}, nil
}

func TestUpload_PutsPublicObject(t *testing.T) {
	fake := &fakeS3{}
	u := NewWithAPI(fake, Config{Bucket: "petcare-media", PublicURL: "https://cdn.example/", Prefix: "/chat/"})

	up, err := u.Upload(context.Background(), "nota.TXT", strings.NewReader("hola"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	key := aws.StringValue(fake.in.Key)
	if !strings.HasPrefix(key, "chat/") || !strings.HasSuffix(key, ".txt") {
		t.Fatalf("unexpected key %q", key)
	}
	if aws.StringValue(fake.in.Bucket) != "petcare-media" || aws.StringValue(fake.in.ACL) != "public-read" {
		t.Fatalf("unexpected input %+v", fake.in)
	}
	if aws.StringValue(fake.in.ContentType) != "text/plain" || string(fake.body) != "hola" {
		t.Fatalf("unexpected content %q %q", aws.StringValue(fake.in.ContentType), fake.body)
	}
	if up.URL != "https://cdn.example/"+key || up.Kind != media.KindFile {
		t.Fatalf("unexpected upload %+v", up)
	}
}

func TestUpload_DefaultPublicURLAndDetectedExt(t *testing.T) {
	fake := &fakeS3{}
	u := NewWithAPI(fake, Config{Bucket: "b", Region: "sa-east-1"})

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	up, err := u.Upload(context.Background(), "foto", strings.NewReader(string(png)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(up.URL, "https://b.s3.sa-east-1.amazonaws.com/") || !strings.HasSuffix(up.URL, ".png") {
		t.Fatalf("unexpected url %q", up.URL)
	}
	if up.Kind != media.KindImage {
		t.Fatalf("expected image kind, got %q", up.Kind)
	}
}

func TestUpload_PropagatesError(t *testing.T) {
	boom := errors.New("access denied")
	u := NewWithAPI(&fakeS3{err: boom}, Config{Bucket: "b"})
	if _, err := u.Upload(context.Background(), "x.txt", strings.NewReader("x")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewUploader_RequiresBucket(t *testing.T) {
	if _, err := NewUploader(Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
