package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// SupabaseStorage handles file uploads to Supabase Storage
type SupabaseStorage struct {
	baseURL    string
	apiKey     string
	bucketName string
	httpClient *http.Client
}

// NewSupabaseStorage creates a new Supabase Storage client
func NewSupabaseStorage(projectID, apiKey, bucketName string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL:    fmt.Sprintf("https://%s.supabase.co/storage/v1", projectID),
		apiKey:     apiKey,
		bucketName: bucketName,
		httpClient: &http.Client{},
	}
}

// Upload stores data under key and returns its public URL
func (s *SupabaseStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucketName, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return s.PublicURL(key), nil
}

// Delete removes a file from Supabase Storage
func (s *SupabaseStorage) Delete(ctx context.Context, key string) error {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucketName, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// PublicURL returns the public URL for a file
func (s *SupabaseStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucketName, key)
}
