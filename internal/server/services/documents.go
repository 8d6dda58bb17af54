package services

import (
	"context"
	"database/sql"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	sc "github.com/dmitrijs2005/hrkeeper/internal/server/config"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// presignExpiry is how long upload and download links stay valid.
const presignExpiry = 15 * time.Minute

// S3 entry points, replaced in tests.
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = func(c *s3.Client) *s3.PresignClient { return s3.NewPresignClient(c) }
	presignPutObject      = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		_, err := c.DeleteObject(ctx, in)
		return err
	}
)

// UploadTicket is handed to the client, which PUTs the file body to URL
// and then confirms the upload.
type UploadTicket struct {
	Document  *models.Document `json:"document"`
	URL       string           `json:"upload_url"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	now         func() time.Time
}

func NewDocumentService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		now:         time.Now,
	}
}

// StorageKey returns a fresh object key under the employee's prefix.
func StorageKey(employeeID string, at time.Time) string {
	return fmt.Sprintf("employees/%s/%d/%d/%d/%v", employeeID, at.Year(), at.Month(), at.Day(), uuid.New())
}

func (s *DocumentService) getClient() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *DocumentService) getPresignClient() (*s3.PresignClient, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

// RequestUpload registers a document and returns a presigned PUT URL for
// its content.
func (s *DocumentService) RequestUpload(ctx context.Context, employeeID, name, contentType, uploadedBy string) (*UploadTicket, error) {
	name = path.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%w: file name is required", common.ErrorValidation)
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.repomanager.Employees(s.db).Get(ctx, employeeID); err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := StorageKey(employeeID, s.now())

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, err
	}

	doc, err := s.repomanager.Documents(s.db).Create(ctx, &models.Document{
		EmployeeID:  employeeID,
		Name:        name,
		ContentType: contentType,
		StorageKey:  key,
		UploadedBy:  uploadedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("error saving document: %w", err)
	}

	return &UploadTicket{Document: doc, URL: req.URL, ExpiresAt: s.now().Add(presignExpiry)}, nil
}

// ConfirmUpload marks the document content as stored.
func (s *DocumentService) ConfirmUpload(ctx context.Context, id string, size int64) error {
	if size < 0 {
		return fmt.Errorf("%w: negative size", common.ErrorValidation)
	}
	return s.repomanager.Documents(s.db).MarkUploaded(ctx, id, size)
}

// DownloadURL returns a presigned GET URL for an uploaded document.
func (s *DocumentService) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.repomanager.Documents(s.db).Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !doc.Uploaded {
		return "", fmt.Errorf("%w: document content was not uploaded", common.ErrorInvalidState)
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket:                     &bucket,
		Key:                        &doc.StorageKey,
		ResponseContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name})),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *DocumentService) List(ctx context.Context, employeeID string) ([]*models.Document, error) {
	return s.repomanager.Documents(s.db).ListByEmployee(ctx, employeeID)
}

// Delete removes the metadata row and then, best effort, the stored
// object. A failed object delete leaves an orphan in the bucket, never a
// row pointing at nothing; the returned error reports it.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	repo := s.repomanager.Documents(s.db)
	doc, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	if !doc.Uploaded {
		return nil
	}

	client, err := s.getClient()
	if err != nil {
		return &OrphanedObjectError{Key: doc.StorageKey, Err: err}
	}
	bucket := s.config.S3Bucket
	if err := deleteObject(client, ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &doc.StorageKey}); err != nil {
		return &OrphanedObjectError{Key: doc.StorageKey, Err: err}
	}
	return nil
}

// OrphanedObjectError means the document row is gone but its object could
// not be removed from storage.
type OrphanedObjectError struct {
	Key string
	Err error
}

func (e *OrphanedObjectError) Error() string {
	return fmt.Sprintf("object %s not deleted: %v", e.Key, e.Err)
}

func (e *OrphanedObjectError) Unwrap() error { return e.Err }
