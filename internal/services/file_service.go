// internal/services/file_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/fiachehr/go-eav/internal/config"
	"github.com/fiachehr/go-eav/internal/models"
	"github.com/fiachehr/go-eav/internal/utils"
)

// FileService uploads the payloads behind file attributes and produces the
// metadata map stored as the attribute's value. Without AWS credentials it
// degrades to local URLs for development.
type FileService struct {
	s3Client *s3.S3
	config   *config.Config
}

// FileMeta is the stored value of a file attribute. The map form returned by
// AsValue is what validation rules and the value store operate on.
type FileMeta struct {
	Key          string `json:"key"`
	URL          string `json:"url"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type"`
	Checksum     string `json:"checksum"`
}

// AsValue converts the metadata into the generic map shape stored in the
// json value column.
func (m *FileMeta) AsValue() map[string]interface{} {
	return map[string]interface{}{
		"key":           m.Key,
		"url":           m.URL,
		"original_name": m.OriginalName,
		"size":          m.Size,
		"mime_type":     m.MimeType,
		"checksum":      m.Checksum,
	}
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
	IsPublic     bool
}

func NewFileService(cfg *config.Config) (*FileService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Local development, no S3.
		return &FileService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &FileService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

// UploadForAttribute validates and stores an upload destined for the given
// file attribute, returning the metadata to persist as its value.
func (s *FileService) UploadForAttribute(attr *models.Attribute, file multipart.File, header *multipart.FileHeader, options UploadOptions) (*FileMeta, error) {
	if attr.Type != models.TypeFile {
		return nil, fmt.Errorf("attribute %s does not store files", attr.Slug)
	}
	return s.Upload(file, header, options)
}

func (s *FileService) Upload(file multipart.File, header *multipart.FileHeader, options UploadOptions) (*FileMeta, error) {
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, fmt.Errorf("file size %d bytes exceeds maximum allowed size %d bytes", header.Size, options.MaxSize)
	}

	if len(options.AllowedTypes) > 0 {
		fileExt := strings.ToLower(filepath.Ext(header.Filename))
		allowed := false
		for _, allowedType := range options.AllowedTypes {
			if fileExt == allowedType {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("file type %s is not allowed", fileExt)
		}
	}

	key := s.generateFileName(header.Filename, options.Folder)

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	contentType := header.Header.Get("Content-Type")

	if s.s3Client != nil {
		return s.uploadToS3(fileBytes, key, header.Filename, contentType, options.IsPublic)
	}
	return s.uploadToLocal(fileBytes, key, header.Filename, contentType)
}

func (s *FileService) uploadToS3(fileBytes []byte, key, originalName, contentType string, isPublic bool) (*FileMeta, error) {
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
	}
	if isPublic {
		params.ACL = aws.String("public-read")
	}

	if _, err := s.s3Client.PutObject(params); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &FileMeta{
		Key:          key,
		URL:          s.getS3URL(key),
		OriginalName: originalName,
		Size:         int64(len(fileBytes)),
		MimeType:     contentType,
		Checksum:     utils.HashBytes(fileBytes),
	}, nil
}

func (s *FileService) uploadToLocal(fileBytes []byte, key, originalName, contentType string) (*FileMeta, error) {
	url := fmt.Sprintf("%s/uploads/%s", s.config.Server.BaseURL, key)

	return &FileMeta{
		Key:          key,
		URL:          url,
		OriginalName: originalName,
		Size:         int64(len(fileBytes)),
		MimeType:     contentType,
		Checksum:     utils.HashBytes(fileBytes),
	}, nil
}

func (s *FileService) DeleteFile(key string) error {
	if s.s3Client == nil {
		return nil
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *FileService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

func (s *FileService) DefaultUploadOptions() UploadOptions {
	return UploadOptions{
		Folder:       "attributes",
		MaxSize:      s.config.EAV.MaxFileSize,
		AllowedTypes: nil,
		IsPublic:     false,
	}
}

func (s *FileService) generateFileName(originalName, folder string) string {
	id := uuid.New()
	ext := filepath.Ext(originalName)

	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, id.String()[:8], ext)

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}
	return filename
}

func (s *FileService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

// ValidateImage checks the upload's leading bytes against known image
// signatures before accepting it for an image-constrained attribute.
func (s *FileService) ValidateImage(file multipart.File) error {
	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	file.Seek(0, 0)

	if !isValidImageType(buffer) {
		return fmt.Errorf("invalid image file")
	}
	return nil
}

func isValidImageType(buffer []byte) bool {
	// JPEG
	if len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF {
		return true
	}
	// PNG
	if len(buffer) >= 8 && buffer[0] == 0x89 && buffer[1] == 0x50 && buffer[2] == 0x4E && buffer[3] == 0x47 {
		return true
	}
	// GIF
	if len(buffer) >= 6 && (string(buffer[0:6]) == "GIF87a" || string(buffer[0:6]) == "GIF89a") {
		return true
	}
	return false
}
