package cloudinary

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillswap-api/internal/config"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

var (
	ErrNotConfigured = errors.New("cloudinary is not configured")
	ErrMissingUserID = errors.New("user id is required")
)

// CloudinaryService выдает подписанные параметры для загрузки аватаров напрямую в Cloudinary
type CloudinaryService struct {
	cfg config.CloudinaryConfig
	log *logrus.Entry
	now func() time.Time
}

// NewCloudinaryService создает новый экземпляр CloudinaryService
func NewCloudinaryService(cfg config.CloudinaryConfig, log *logrus.Entry) *CloudinaryService {
	return &CloudinaryService{cfg: cfg, log: log, now: time.Now}
}

// UploadParams - параметры подписанной загрузки
type UploadParams struct {
	Timestamp    string `json:"timestamp"`
	Signature    string `json:"signature"`
	APIKey       string `json:"api_key"`
	CloudName    string `json:"cloud_name"`
	Folder       string `json:"folder,omitempty"`
	PublicID     string `json:"public_id"`
	UploadPreset string `json:"upload_preset,omitempty"`
}

// AvatarPublicID - у каждого пользователя один аватар, новая загрузка заменяет старую
func AvatarPublicID(userID string) string {
	return "avatar_" + userID
}

// UploadParams подписывает параметры загрузки аватара пользователя
func (s *CloudinaryService) UploadParams(userID string) (UploadParams, error) {
	if s.cfg.CloudName == "" || s.cfg.APIKey == "" || s.cfg.APISecret == "" {
		return UploadParams{}, ErrNotConfigured
	}
	if userID == "" {
		return UploadParams{}, ErrMissingUserID
	}

	p := UploadParams{
		Timestamp:    strconv.FormatInt(s.now().Unix(), 10),
		APIKey:       s.cfg.APIKey,
		CloudName:    s.cfg.CloudName,
		Folder:       s.cfg.UploadFolder,
		PublicID:     AvatarPublicID(userID),
		UploadPreset: s.cfg.UploadPreset,
	}

	params := url.Values{}
	params.Set("timestamp", p.Timestamp)
	params.Set("public_id", p.PublicID)
	if p.Folder != "" {
		params.Set("folder", p.Folder)
	}
	if p.UploadPreset != "" {
		params.Set("upload_preset", p.UploadPreset)
	}

	signature, err := api.SignParameters(params, s.cfg.APISecret)
	if err != nil {
		return UploadParams{}, fmt.Errorf("ошибка подписи параметров загрузки: %w", err)
	}
	p.Signature = signature
	return p, nil
}

// GenerateUploadParams создаёт параметры для загрузки аватара
func (s *CloudinaryService) GenerateUploadParams(c fiber.Ctx) error {
	params, err := s.UploadParams(middleware.CurrentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotConfigured):
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		case errors.Is(err, ErrMissingUserID):
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		s.log.WithError(err).Error("❌ Ошибка подписи загрузки")
		return fiber.NewError(fiber.StatusInternalServerError, "Ошибка подписи загрузки")
	}
	return c.JSON(params)
}
