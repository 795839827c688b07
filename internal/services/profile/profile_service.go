package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/store"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrInvalidProfile  = errors.New("invalid profile")
)

const (
	// publicListLimit - сколько профилей отдает каталог
	publicListLimit = 50
	resolveParallel = 8
)

// ProfileService представляет сервис профилей пользователей
type ProfileService struct {
	store store.Store
	log   *logrus.Entry
	now   func() time.Time
}

// NewProfileService создает новый экземпляр ProfileService
func NewProfileService(st store.Store, log *logrus.Entry) *ProfileService {
	return &ProfileService{store: st, log: log, now: time.Now}
}

// Create создает профиль с ID пользователя из провайдера идентификации
func (s *ProfileService) Create(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	if p.ID == "" {
		return models.UserProfile{}, fmt.Errorf("%w: id is required", ErrInvalidProfile)
	}
	if strings.TrimSpace(p.Name) == "" {
		return models.UserProfile{}, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}

	now := s.now().UTC()
	p.SkillsOffered = normalizeSkills(p.SkillsOffered)
	p.SkillsWanted = normalizeSkills(p.SkillsWanted)
	p.Rating = 0
	p.CompletedSwaps = 0
	p.IsPublic = true
	p.Status = models.UserStatusActive
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.store.Create(ctx, models.CollectionUsers, p.ID, p.Fields()); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return models.UserProfile{}, ErrProfileExists
		}
		return models.UserProfile{}, fmt.Errorf("ошибка создания профиля: %w", err)
	}
	return p, nil
}

// Get возвращает профиль пользователя
func (s *ProfileService) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	if userID == "" {
		return models.UserProfile{}, ErrProfileNotFound
	}

	doc, err := s.store.Get(ctx, models.CollectionUsers, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.UserProfile{}, ErrProfileNotFound
		}
		return models.UserProfile{}, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	return models.ProfileFromDocument(doc), nil
}

// ProfileUpdate - изменяемые владельцем поля профиля; nil означает "не менять"
type ProfileUpdate struct {
	Name          *string   `json:"name"`
	FirstName     *string   `json:"firstName"`
	LastName      *string   `json:"lastName"`
	Location      *string   `json:"location"`
	Bio           *string   `json:"bio"`
	SkillsOffered *[]string `json:"skillsOffered"`
	SkillsWanted  *[]string `json:"skillsWanted"`
	Avatar        *string   `json:"avatar"`
	IsPublic      *bool     `json:"isPublic"`
}

func (u ProfileUpdate) fields() (store.Fields, error) {
	f := store.Fields{}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidProfile)
		}
		f["name"] = name
	}
	setString(f, "firstName", u.FirstName)
	setString(f, "lastName", u.LastName)
	setString(f, "location", u.Location)
	setString(f, "bio", u.Bio)
	setString(f, "avatar", u.Avatar)
	if u.SkillsOffered != nil {
		f["skillsOffered"] = normalizeSkills(*u.SkillsOffered)
	}
	if u.SkillsWanted != nil {
		f["skillsWanted"] = normalizeSkills(*u.SkillsWanted)
	}
	if u.IsPublic != nil {
		f["isPublic"] = *u.IsPublic
	}
	return f, nil
}

func setString(f store.Fields, key string, value *string) {
	if value != nil {
		f[key] = strings.TrimSpace(*value)
	}
}

// Update применяет правки владельца и возвращает обновленный профиль
func (s *ProfileService) Update(ctx context.Context, userID string, upd ProfileUpdate) (models.UserProfile, error) {
	fields, err := upd.fields()
	if err != nil {
		return models.UserProfile{}, err
	}
	fields["updatedAt"] = s.now().UTC()

	if err := s.store.Update(ctx, models.CollectionUsers, userID, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.UserProfile{}, ErrProfileNotFound
		}
		return models.UserProfile{}, fmt.Errorf("ошибка обновления профиля: %w", err)
	}
	return s.Get(ctx, userID)
}

// SetStatus меняет статус пользователя (блокировка администратором)
func (s *ProfileService) SetStatus(ctx context.Context, userID string, status models.UserStatus) error {
	err := s.store.Update(ctx, models.CollectionUsers, userID, store.Fields{
		"status":    string(status),
		"updatedAt": s.now().UTC(),
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrProfileNotFound
	}
	if err != nil {
		return fmt.Errorf("ошибка изменения статуса пользователя: %w", err)
	}
	return nil
}

// ListPublic возвращает публичных активных пользователей, новые первыми.
// Фильтр по навыку применяется после выборки, как подстрока без учета регистра.
func (s *ProfileService) ListPublic(ctx context.Context, skill string) ([]models.UserProfile, error) {
	q := store.From(models.CollectionUsers).
		Filter("isPublic", store.OpEqual, true).
		Filter("status", store.OpEqual, string(models.UserStatusActive)).
		Order("createdAt", true).
		Take(publicListLimit)

	docs, err := s.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}

	users := make([]models.UserProfile, 0, len(docs))
	for _, doc := range docs {
		p := models.ProfileFromDocument(doc)
		if p.HasSkill(skill) {
			users = append(users, p)
		}
	}
	return users, nil
}

// Resolve загружает профили параллельно. Ненайденные ID просто отсутствуют в результате.
func (s *ProfileService) Resolve(ctx context.Context, userIDs []string) map[string]models.UserProfile {
	result := make(map[string]models.UserProfile, len(userIDs))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(resolveParallel)

	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		g.Go(func() error {
			p, err := s.Get(ctx, id)
			if err != nil {
				if !errors.Is(err, ErrProfileNotFound) {
					s.log.WithError(err).WithField("user_id", id).Warn("⚠️ Не удалось загрузить профиль")
				}
				return nil
			}
			mu.Lock()
			result[id] = p
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return result
}

// normalizeSkills убирает пустые значения и повторы, сохраняя порядок
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, skill)
	}
	return out
}
