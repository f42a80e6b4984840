package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rpupo63/portfolio-backend/config"
	"golang.org/x/text/unicode/norm"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"

	// UploadPrefix is the directory part of every stored image path.
	UploadPrefix = "uploads"
	// MaxUploadBytes bounds a whole upload request.
	MaxUploadBytes = 16 << 20

	uploadTimestampLayout = "20060102_150405_"

	maxNameAttempts = 100
)

var allowedImageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// Upload is an image file received with a form.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Storage persists uploaded images under relative paths like "uploads/<name>".
type Storage interface {
	Save(ctx context.Context, name string, body io.Reader) (string, error)
	Remove(ctx context.Context, relPath string) error
	URL(relPath string) string
}

// AllowedImage reports whether filename has a jpg, jpeg or png extension.
func AllowedImage(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return allowedImageExtensions[ext]
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces an arbitrary client filename to a safe ASCII basename.
func SecureFilename(filename string) string {
	filename = norm.NFKD.String(filename)
	filename = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		if r == '/' || r == '\\' {
			return ' '
		}
		return r
	}, filename)

	filename = strings.Join(strings.Fields(filename), "_")
	filename = unsafeFilenameChars.ReplaceAllString(filename, "")
	return strings.Trim(filename, "._")
}

// UploadName prefixes the sanitized filename with the upload time.
func UploadName(at time.Time, filename string) string {
	return at.Format(uploadTimestampLayout) + SecureFilename(filename)
}

// NewStorageFromConfig builds the backend named by STORAGE_BACKEND.
func NewStorageFromConfig(ctx context.Context, c map[string]string) (Storage, error) {
	switch backend := strings.ToLower(config.GetString(c, "STORAGE_BACKEND", StorageLocal)); backend {
	case StorageLocal:
		return NewLocalStorage(config.GetString(c, "UPLOAD_DIR", filepath.Join("static", UploadPrefix))), nil
	case StorageS3:
		bucket := config.GetString(c, "S3_BUCKET", "")
		if bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return NewS3Storage(s3.NewFromConfig(awsCfg), bucket), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", backend)
	}
}

// LocalStorage writes uploads into a directory on disk that is served
// under URLPrefix.
type LocalStorage struct {
	Dir       string
	URLPrefix string
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{Dir: dir, URLPrefix: "/static"}
}

func (s *LocalStorage) Save(ctx context.Context, name string, body io.Reader) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	f, name, err := s.create(name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}
	return path.Join(UploadPrefix, name), nil
}

// create opens a new file for name, never an existing one. A taken name
// gets a numeric suffix before the extension: cover.png, cover_1.png, ...
func (s *LocalStorage) create(name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		f, err := os.OpenFile(filepath.Join(s.Dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("failed to create upload file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("failed to create upload file: %d names taken for %s", maxNameAttempts, name)
}

func (s *LocalStorage) Remove(ctx context.Context, relPath string) error {
	name := path.Base(relPath)
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStorage) URL(relPath string) string {
	return path.Join(s.URLPrefix, relPath)
}

// S3Client is the part of the S3 API the storage needs.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage keeps uploads in a bucket under the "uploads/" key prefix.
type S3Storage struct {
	client S3Client
	bucket string
}

func NewS3Storage(client S3Client, bucket string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket}
}

func (s *S3Storage) Save(ctx context.Context, name string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	key := path.Join(UploadPrefix, name)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(imageContentType(name)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return key, nil
}

func (s *S3Storage) Remove(ctx context.Context, relPath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(relPath),
	})
	return err
}

func (s *S3Storage) URL(relPath string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, relPath)
}

func imageContentType(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
