package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureFilename(t *testing.T) {
	tests := map[string]string{
		"My Résumé.PNG":         "My_Resume.PNG",
		"../../etc/passwd":      "etc_passwd",
		`C:\Users\ana\shot.jpg`: "C_Users_ana_shot.jpg",
		"  spaced   out .jpeg ": "spaced_out_.jpeg",
		"日本.png":                "png",
		"   ":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SecureFilename(in), in)
	}
}

func TestAllowedImage(t *testing.T) {
	assert.True(t, AllowedImage("photo.JPG"))
	assert.True(t, AllowedImage("photo.jpeg"))
	assert.True(t, AllowedImage("photo.png"))
	assert.False(t, AllowedImage("photo.gif"))
	assert.False(t, AllowedImage("png"))
}

func TestUploadName(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "20240102_030405_cover.png", UploadName(at, "cover.png"))
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewLocalStorage(dir)

	rel, err := store.Save(ctx, "cover.png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/cover.png", rel)
	assert.Equal(t, "/static/uploads/cover.png", store.URL(rel))

	require.NoError(t, store.Remove(ctx, rel))
	_, err = os.Stat(filepath.Join(dir, "cover.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(ctx, rel), "removing twice is fine")
}

func TestLocalStorageNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStorage(dir)

	first, err := store.Save(ctx, "20240102_030405_cover.png", strings.NewReader("first"))
	require.NoError(t, err)
	second, err := store.Save(ctx, "20240102_030405_cover.png", strings.NewReader("second"))
	require.NoError(t, err)
	third, err := store.Save(ctx, "20240102_030405_cover.png", strings.NewReader("third"))
	require.NoError(t, err)

	assert.Equal(t, "uploads/20240102_030405_cover.png", first)
	assert.Equal(t, "uploads/20240102_030405_cover_1.png", second)
	assert.Equal(t, "uploads/20240102_030405_cover_2.png", third)

	data, err := os.ReadFile(filepath.Join(dir, "20240102_030405_cover.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	// Discarding one upload leaves the others in place.
	require.NoError(t, store.Remove(ctx, second))
	_, err = os.Stat(filepath.Join(dir, "20240102_030405_cover.png"))
	assert.NoError(t, err)
}

type fakeS3 struct {
	puts    map[string]string
	types   map[string]string
	deleted []string
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(params.Key)] = string(body)
	f.types[aws.ToString(params.Key)] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{puts: map[string]string{}, types: map[string]string{}}
	store := NewS3Storage(client, "portfolio-media")

	rel, err := store.Save(ctx, "cover.png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/cover.png", rel)
	assert.Equal(t, "data", client.puts[rel])
	assert.Equal(t, "image/png", client.types[rel])
	assert.Equal(t, "https://portfolio-media.s3.amazonaws.com/uploads/cover.png", store.URL(rel))

	require.NoError(t, store.Remove(ctx, rel))
	assert.Equal(t, []string{"uploads/cover.png"}, client.deleted)
}

func TestNewStorageFromConfig(t *testing.T) {
	store, err := NewStorageFromConfig(context.Background(), map[string]string{"UPLOAD_DIR": "/tmp/up"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/up", store.(*LocalStorage).Dir)

	_, err = NewStorageFromConfig(context.Background(), map[string]string{"STORAGE_BACKEND": "s3"})
	assert.Error(t, err)

	_, err = NewStorageFromConfig(context.Background(), map[string]string{"STORAGE_BACKEND": "ftp"})
	assert.Error(t, err)
}
