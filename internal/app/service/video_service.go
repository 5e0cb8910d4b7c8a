package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"codexa/internal/common"
	"codexa/internal/domain/model"
	"codexa/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VideoService manages editorial videos. Upload and storage are delegated to
// the media host; this service only issues signed upload credentials, verifies
// uploads, and keeps metadata.
type VideoService struct {
	videoRepo   repository.VideoRepository
	problemRepo repository.ProblemRepository
	cloudName   string
	apiKey      string
	apiSecret   string
	apiBase     string
	cdnBase     string
	http        *http.Client
	logger      *zap.Logger
}

func NewVideoService(
	videoRepo repository.VideoRepository,
	problemRepo repository.ProblemRepository,
	cloudName, apiKey, apiSecret string,
	logger *zap.Logger,
) *VideoService {
	return &VideoService{
		videoRepo:   videoRepo,
		problemRepo: problemRepo,
		cloudName:   cloudName,
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		apiBase:     "https://api.cloudinary.com/v1_1/" + cloudName,
		cdnBase:     "https://res.cloudinary.com/" + cloudName,
		http:        &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

type UploadCredentials struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	PublicID  string `json:"public_id"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
	UploadURL string `json:"upload_url"`
}

type SaveVideoRequest struct {
	ProblemID string  `json:"problemId"`
	PublicID  string  `json:"cloudinaryPublicId"`
	SecureURL string  `json:"secureUrl"`
	Duration  float64 `json:"duration"`
}

// signParams produces the media host's request signature: parameters sorted by
// key, joined as key=value with &, then the API secret appended, SHA-1 hashed.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// CreateUploadSignature returns short-lived credentials the browser uses to
// upload directly to the media host.
func (s *VideoService) CreateUploadSignature(ctx context.Context, userID, problemID string) (*UploadCredentials, error) {
	if _, err := s.problemRepo.FindByID(ctx, problemID); err != nil {
		return nil, err
	}

	timestamp := time.Now().Unix()
	publicID := fmt.Sprintf("editorials/%s/%s_%d", problemID, userID, timestamp)
	signature := signParams(map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(timestamp, 10),
	}, s.apiSecret)

	return &UploadCredentials{
		Signature: signature,
		Timestamp: timestamp,
		PublicID:  publicID,
		APIKey:    s.apiKey,
		CloudName: s.cloudName,
		UploadURL: s.apiBase + "/video/upload",
	}, nil
}

type hostResource struct {
	PublicID string  `json:"public_id"`
	Duration float64 `json:"duration"`
}

// fetchResource confirms the upload exists on the media host and returns its
// metadata.
func (s *VideoService) fetchResource(ctx context.Context, publicID string) (*hostResource, error) {
	endpoint := s.apiBase + "/resources/video/upload/" + url.PathEscape(publicID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build resource request: %w", err)
	}
	req.SetBasicAuth(s.apiKey, s.apiSecret)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, common.Errorf("media host unreachable: %v: %w", err, common.ErrInternalServer)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, common.Errorf("video not found on media host: %w", common.ErrBadRequest)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, common.Errorf("media host error (status %d): %w", resp.StatusCode, common.ErrInternalServer)
	}

	var res hostResource
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode resource response: %w", err)
	}
	return &res, nil
}

// SaveMetadata verifies the upload with the media host, rejects duplicates,
// and records the video against the problem.
func (s *VideoService) SaveMetadata(ctx context.Context, userID string, req SaveVideoRequest) (*model.SolutionVideo, error) {
	if req.ProblemID == "" || req.PublicID == "" || req.SecureURL == "" {
		return nil, common.Errorf("problemId, cloudinaryPublicId and secureUrl are required: %w", common.ErrValidation)
	}

	resource, err := s.fetchResource(ctx, req.PublicID)
	if err != nil {
		return nil, err
	}

	exists, err := s.videoRepo.Exists(ctx, req.ProblemID, userID, req.PublicID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.Errorf("video already exists: %w", common.ErrConflict)
	}

	duration := resource.Duration
	if duration == 0 {
		duration = req.Duration
	}

	video := &model.SolutionVideo{
		ID:           uuid.NewString(),
		ProblemID:    req.ProblemID,
		UserID:       userID,
		PublicID:     req.PublicID,
		SecureURL:    req.SecureURL,
		ThumbnailURL: fmt.Sprintf("%s/video/upload/so_0/%s.jpg", s.cdnBase, req.PublicID),
		Duration:     duration,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, err
	}

	s.logger.Info("solution video saved", zap.String("problem_id", req.ProblemID), zap.String("public_id", req.PublicID))
	return video, nil
}

// Delete removes the video upstream and then the metadata row.
func (s *VideoService) Delete(ctx context.Context, problemID string) error {
	video, err := s.videoRepo.FindByProblemID(ctx, problemID)
	if err != nil {
		return err
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	form := url.Values{}
	form.Set("public_id", video.PublicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", s.apiKey)
	form.Set("signature", signParams(map[string]string{
		"public_id": video.PublicID,
		"timestamp": timestamp,
	}, s.apiSecret))

	endpoint := s.apiBase + "/video/destroy"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return common.Errorf("media host unreachable: %v: %w", err, common.ErrInternalServer)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return common.Errorf("media host delete failed (status %d): %w", resp.StatusCode, common.ErrInternalServer)
	}

	return s.videoRepo.DeleteByProblemID(ctx, problemID)
}
