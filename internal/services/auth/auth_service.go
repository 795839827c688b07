package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/services/profile"
	"github.com/rajivgeraev/skillswap-api/internal/store"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

// CollectionCredentials - учетные данные для входа по email; ID документа - email в нижнем регистре
const CollectionCredentials = "credentials"

const (
	minPasswordLength = 6
	initDataTTL       = 24 * time.Hour
)

var (
	ErrInvalidSignUp      = errors.New("invalid sign up data")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserBanned         = errors.New("user is banned")
	ErrInvalidInitData    = errors.New("invalid Telegram data")
)

// telegramNamespace - пространство имен для стабильных ID пользователей Telegram
var telegramNamespace = uuid.MustParse("6f1c1f3e-3c1a-5b8e-9d4a-7c2e8b0f4a11")

// Profiles создает и читает профили пользователей
type Profiles interface {
	Create(ctx context.Context, p models.UserProfile) (models.UserProfile, error)
	Get(ctx context.Context, userID string) (models.UserProfile, error)
}

// AuthService – регистрация, вход и выдача JWT
type AuthService struct {
	store      store.Store
	profiles   Profiles
	jwtService *utils.JWTService
	geo        *Geolocator
	botToken   string
	bcryptCost int
	log        *logrus.Entry
	now        func() time.Time
}

// NewAuthService – конструктор AuthService
func NewAuthService(st store.Store, profiles Profiles, jwtService *utils.JWTService, geo *Geolocator, botToken string, log *logrus.Entry) *AuthService {
	return &AuthService{
		store:      st,
		profiles:   profiles,
		jwtService: jwtService,
		geo:        geo,
		botToken:   botToken,
		bcryptCost: bcrypt.DefaultCost,
		log:        log,
		now:        time.Now,
	}
}

// Session - выданный токен и профиль пользователя
type Session struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

// SignUpInput - данные регистрации по email
type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IP       string `json:"-"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp регистрирует пользователя и создает его профиль
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (Session, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return Session{}, fmt.Errorf("%w: name is required", ErrInvalidSignUp)
	case !strings.Contains(email, "@"):
		return Session{}, fmt.Errorf("%w: email is invalid", ErrInvalidSignUp)
	case len(in.Password) < minPasswordLength:
		return Session{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidSignUp, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	userID := uuid.NewString()
	_, err = s.store.Create(ctx, CollectionCredentials, email, store.Fields{
		"userId":       userID,
		"passwordHash": string(hash),
		"createdAt":    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("ошибка сохранения учетных данных: %w", err)
	}

	p, err := s.profiles.Create(ctx, models.UserProfile{
		ID:       userID,
		Name:     name,
		Email:    email,
		Location: s.geo.Locate(ctx, in.IP),
	})
	if err != nil {
		return Session{}, fmt.Errorf("ошибка создания профиля: %w", err)
	}

	s.log.WithField("user_id", userID).Info("✅ Зарегистрирован новый пользователь")
	return s.session(p)
}

// SignIn проверяет пароль и выдает токен
func (s *AuthService) SignIn(ctx context.Context, email, password string) (Session, error) {
	doc, err := s.store.Get(ctx, CollectionCredentials, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("ошибка получения учетных данных: %w", err)
	}

	hash := doc.Fields.String("passwordHash")
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	p, err := s.profiles.Get(ctx, doc.Fields.String("userId"))
	if err != nil {
		return Session{}, err
	}
	if p.Status == models.UserStatusBanned {
		return Session{}, ErrUserBanned
	}
	return s.session(p)
}

// TelegramUserID возвращает стабильный ID пользователя для аккаунта Telegram
func TelegramUserID(telegramID int64) string {
	return uuid.NewSHA1(telegramNamespace, []byte("telegram:"+strconv.FormatInt(telegramID, 10))).String()
}

// TelegramLogin проверяет initData мини-приложения и при первом входе создает профиль
func (s *AuthService) TelegramLogin(ctx context.Context, rawInitData string) (Session, error) {
	if err := initdata.Validate(rawInitData, s.botToken, initDataTTL); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	data, err := initdata.Parse(rawInitData)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}
	if data.User.ID == 0 {
		return Session{}, fmt.Errorf("%w: user is missing", ErrInvalidInitData)
	}

	userID := TelegramUserID(data.User.ID)
	p, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, profile.ErrProfileNotFound) {
		p, err = s.createTelegramProfile(ctx, userID, data.User)
	}
	if err != nil {
		return Session{}, err
	}
	if p.Status == models.UserStatusBanned {
		return Session{}, ErrUserBanned
	}
	return s.session(p)
}

func (s *AuthService) createTelegramProfile(ctx context.Context, userID string, u initdata.User) (models.UserProfile, error) {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}

	p, err := s.profiles.Create(ctx, models.UserProfile{
		ID:        userID,
		Name:      name,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.PhotoURL,
		Location:  LocationUnavailable,
	})
	// Параллельный первый вход уже создал профиль
	if errors.Is(err, profile.ErrProfileExists) {
		return s.profiles.Get(ctx, userID)
	}
	if err != nil {
		return models.UserProfile{}, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"telegram_id": u.ID,
	}).Info("✅ Создан профиль пользователя Telegram")
	return p, nil
}

func (s *AuthService) session(p models.UserProfile) (Session, error) {
	token, err := s.jwtService.GenerateToken(p.ID)
	if err != nil {
		return Session{}, fmt.Errorf("ошибка генерации JWT: %w", err)
	}
	return Session{Token: token, User: p}, nil
}
