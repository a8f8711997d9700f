package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"rescueradar/models"
	"rescueradar/utils"
)

const MaxImageSize = 10 * 1024 * 1024

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStorage persists uploaded bytes under a key and returns their public URL.
type ImageStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	HealthCheck(ctx context.Context) error
	Name() string
}

type UploadService struct {
	storage ImageStorage
	maxSize int64
	now     func() time.Time
}

func NewUploadService(storage ImageStorage) *UploadService {
	return &UploadService{storage: storage, maxSize: MaxImageSize, now: time.Now}
}

func (s *UploadService) Storage() ImageStorage {
	return s.storage
}

// Upload sniffs the content type, enforces the size limit and stores the image
// as uploads/{yyyy-mm-dd}/{uuid}{ext}.
func (s *UploadService) Upload(ctx context.Context, r io.Reader, size int64) (*models.UploadedImage, error) {
	if size > s.maxSize {
		return nil, utils.NewBadRequestError("File size too large. Maximum 10MB allowed.")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, utils.NewBadRequestError("File size too large. Maximum 10MB allowed.")
	}
	if len(data) == 0 {
		return nil, utils.NewBadRequestError("No image file provided")
	}

	detected := mimetype.Detect(data)
	contentType := detected.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, utils.NewBadRequestError("Invalid file type. Only JPEG, PNG, and WebP are allowed.")
	}

	filename := uuid.NewString() + ext
	key := fmt.Sprintf("uploads/%s/%s", s.now().UTC().Format("2006-01-02"), filename)

	url, err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, utils.NewExternalServiceError(s.storage.Name(), "Failed to upload image", err)
	}

	logrus.WithFields(logrus.Fields{
		"key":     key,
		"size":    len(data),
		"storage": s.storage.Name(),
	}).Info("Image uploaded")

	return &models.UploadedImage{
		ImageURL:    url,
		Filename:    filename,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

// MinIOStorage keeps uploads in an S3-compatible bucket.
type MinIOStorage struct {
	client         *minio.Client
	bucketName     string
	publicEndpoint string
	useSSL         bool
}

func NewMinIOStorage(endpoint, publicEndpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	if publicEndpoint == "" {
		publicEndpoint = endpoint
	}
	storage := &MinIOStorage{
		client:         client,
		bucketName:     bucketName,
		publicEndpoint: strings.TrimSuffix(strings.TrimSpace(publicEndpoint), "/"),
		useSSL:         useSSL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		logrus.WithError(err).WithField("bucket", bucketName).Warn("Failed to check bucket existence, continuing")
	} else if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			logrus.WithError(err).WithField("bucket", bucketName).Error("Failed to create bucket")
		} else {
			policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Action":["s3:GetObject"],"Effect":"Allow","Principal":{"AWS":["*"]},"Resource":["arn:aws:s3:::%s/*"]}]}`, bucketName)
			if err := client.SetBucketPolicy(ctx, bucketName, policy); err != nil {
				logrus.WithError(err).Error("Failed to set bucket policy")
			}
			logrus.WithField("bucket", bucketName).Info("Bucket created")
		}
	}

	logrus.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"bucket":   bucketName,
	}).Info("MinIO storage initialized")

	return storage, nil
}

func (s *MinIOStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return s.ObjectURL(key), nil
}

func (s *MinIOStorage) ObjectURL(key string) string {
	if strings.Contains(s.publicEndpoint, "://") {
		return fmt.Sprintf("%s/%s/%s", s.publicEndpoint, s.bucketName, key)
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.publicEndpoint, s.bucketName, key)
}

func (s *MinIOStorage) HealthCheck(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("MinIO health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket '%s' does not exist", s.bucketName)
	}
	return nil
}

func (s *MinIOStorage) Name() string { return "minio" }

// LocalStorage writes uploads below a directory served at urlPrefix.
type LocalStorage struct {
	root      string
	urlPrefix string
}

func NewLocalStorage(root, urlPrefix string) *LocalStorage {
	return &LocalStorage{root: root, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

func (s *LocalStorage) Root() string { return s.root }

func (s *LocalStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	// Keys are rooted at uploads/, which the directory itself stands for.
	rel := strings.TrimPrefix(key, "uploads/")
	path := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return s.urlPrefix + "/" + rel, nil
}

func (s *LocalStorage) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("upload dir unavailable: %w", err)
	}
	return nil
}

func (s *LocalStorage) Name() string { return "local" }
