package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Service handles Cloudinary upload operations for report evidence photos
type Service struct {
	cld          *cloudinary.Cloudinary
	uploadFolder string
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	URL      string
	PublicID string
	Width    int
	Height   int
	FileSize int64
	Format   string
}

var (
	AllowedImageTypes = []string{".jpg", ".jpeg", ".png", ".webp"}

	MaxImageSize = int64(10 * 1024 * 1024) // 10MB
)

// NewService creates a new Cloudinary service instance
func NewService(cloudName, apiKey, apiSecret, uploadFolder string) (*Service, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName)

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	if uploadFolder == "" {
		uploadFolder = "dharani"
	}

	return &Service{
		cld:          cld,
		uploadFolder: uploadFolder,
	}, nil
}

// UploadReportImage uploads a citizen's waste photo
func (s *Service) UploadReportImage(ctx context.Context, file multipart.File, publicID string) (*UploadResult, error) {
	return s.upload(ctx, file, s.uploadFolder+"/reports", publicID)
}

// UploadProofImage uploads a worker's after-cleanup photo
func (s *Service) UploadProofImage(ctx context.Context, file multipart.File, publicID string) (*UploadResult, error) {
	return s.upload(ctx, file, s.uploadFolder+"/proofs", publicID)
}

func (s *Service) upload(ctx context.Context, file multipart.File, folder, publicID string) (*UploadResult, error) {
	uploadParams := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "image",
	}

	result, err := s.cld.Upload.Upload(ctx, file, uploadParams)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return &UploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Width:    result.Width,
		Height:   result.Height,
		FileSize: int64(result.Bytes),
		Format:   result.Format,
	}, nil
}

// Delete removes an asset from Cloudinary
func (s *Service) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return errors.New("publicID is required")
	}

	destroyParams := uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	}

	if _, err := s.cld.Upload.Destroy(ctx, destroyParams); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	return nil
}

// ValidateImageFile validates an image file upload before it is sent upstream
func ValidateImageFile(header *multipart.FileHeader) error {
	if header.Size > MaxImageSize {
		return fmt.Errorf("image file size exceeds maximum allowed size of %d MB", MaxImageSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !isAllowedExtension(ext, AllowedImageTypes) {
		return fmt.Errorf("invalid image file type: %s. Allowed types: %s", ext, strings.Join(AllowedImageTypes, ", "))
	}

	return nil
}

func isAllowedExtension(ext string, allowedTypes []string) bool {
	for _, allowed := range allowedTypes {
		if ext == allowed {
			return true
		}
	}
	return false
}
