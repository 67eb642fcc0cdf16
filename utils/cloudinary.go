package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/joho/godotenv"
)

// Folders that hold provider uploads. Anything outside these is a shared
// catalog asset and must never be deleted by per-provider cleanup.
var uploadFolders = []string{
	"provider_banners",
	"provider_documents",
	"provider_services",
	"provider_gallery",
}

// ImageStore is the object-storage surface the controllers use. The
// Cloudinary implementation is swapped for a fake in tests.
type ImageStore interface {
	UploadImage(file interface{}, publicID string, folder string) (string, error)
	DeleteImage(url string) error
	IsCustomUploadedImage(url string) bool
}

// Images is the active store. Main leaves the Cloudinary default in place.
var Images ImageStore = &CloudinaryStore{}

type CloudinaryStore struct{}

func initCloudinary() (*cloudinary.Cloudinary, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}

	return cloudinary.NewFromParams(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"))
}

// UploadImage uploads a file to Cloudinary and returns the secure URL
func (s *CloudinaryStore) UploadImage(file interface{}, publicID string, folder string) (string, error) {
	cld, err := initCloudinary()
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	uploadParams := uploader.UploadParams{
		PublicID:     publicID,
		Folder:       folder,
		UploadPreset: os.Getenv("CLOUDINARY_UPLOAD_PRESET"),
	}

	// Apply transformation only for images (not for PDFs)
	fileStr, ok := file.(string)
	if ok {
		ext := strings.ToLower(filepath.Ext(fileStr))
		if ext != ".pdf" {
			uploadParams.Transformation = "c_limit,w_1600,h_1600"
		}
	}

	resp, err := cld.Upload.Upload(ctx, file, uploadParams)
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}

// DeleteImage removes a previously uploaded asset by its delivery URL.
func (s *CloudinaryStore) DeleteImage(url string) error {
	publicID, err := publicIDFromURL(url)
	if err != nil {
		return err
	}

	cld, err := initCloudinary()
	if err != nil {
		return err
	}

	_, err = cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	return err
}

// IsCustomUploadedImage distinguishes provider uploads from shared catalog
// assets so cleanup never touches the latter.
func (s *CloudinaryStore) IsCustomUploadedImage(url string) bool {
	if url == "" {
		return false
	}
	for _, folder := range uploadFolders {
		if strings.Contains(url, "/"+folder+"/") {
			return true
		}
	}
	return false
}

// publicIDFromURL extracts "folder/name" from a Cloudinary delivery URL like
// https://res.cloudinary.com/<cloud>/image/upload/v123/folder/name.jpg
func publicIDFromURL(url string) (string, error) {
	idx := strings.Index(url, "/upload/")
	if idx < 0 {
		return "", fmt.Errorf("not a cloudinary upload URL: %s", url)
	}
	path := url[idx+len("/upload/"):]
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 2 && strings.HasPrefix(parts[0], "v") {
		path = parts[1]
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext), nil
}

// CleanupImages deletes replaced uploads in the background. Failures are
// logged and swallowed: the primary write already committed, and catalog
// assets are skipped entirely.
func CleanupImages(urls []string) {
	for _, url := range urls {
		if !Images.IsCustomUploadedImage(url) {
			continue
		}
		go func(u string) {
			if err := Images.DeleteImage(u); err != nil {
				log.Printf("Failed to delete replaced image %s: %v", u, err)
			}
		}(url)
	}
}
