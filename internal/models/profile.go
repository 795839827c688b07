package models

import (
	"strings"
	"time"

	"github.com/rajivgeraev/skillswap-api/internal/store"
)

// CollectionUsers - коллекция профилей пользователей
const CollectionUsers = "users"

// UserStatus определяет статус пользователя
type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusBanned UserStatus = "banned"
)

// UserProfile представляет профиль пользователя
type UserProfile struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	Email          string     `json:"email,omitempty"`
	Location       string     `json:"location,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	SkillsOffered  []string   `json:"skillsOffered"`
	SkillsWanted   []string   `json:"skillsWanted"`
	Avatar         string     `json:"avatar,omitempty"`
	Rating         float64    `json:"rating"`
	CompletedSwaps int        `json:"completedSwaps"`
	IsPublic       bool       `json:"isPublic"`
	Status         UserStatus `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Fields возвращает поля документа профиля (без id)
func (p UserProfile) Fields() store.Fields {
	return store.Fields{
		"name":           p.Name,
		"firstName":      p.FirstName,
		"lastName":       p.LastName,
		"email":          p.Email,
		"location":       p.Location,
		"bio":            p.Bio,
		"skillsOffered":  nonNil(p.SkillsOffered),
		"skillsWanted":   nonNil(p.SkillsWanted),
		"avatar":         p.Avatar,
		"rating":         p.Rating,
		"completedSwaps": p.CompletedSwaps,
		"isPublic":       p.IsPublic,
		"status":         string(p.Status),
		"createdAt":      p.CreatedAt,
		"updatedAt":      p.UpdatedAt,
	}
}

// ProfileFromDocument собирает профиль из документа, подставляя значения по умолчанию
func ProfileFromDocument(doc store.Document) UserProfile {
	f := doc.Fields
	status := UserStatus(f.String("status"))
	if status == "" {
		status = UserStatusActive
	}

	return UserProfile{
		ID:             doc.ID,
		Name:           f.String("name"),
		FirstName:      f.String("firstName"),
		LastName:       f.String("lastName"),
		Email:          f.String("email"),
		Location:       f.String("location"),
		Bio:            f.String("bio"),
		SkillsOffered:  f.Strings("skillsOffered"),
		SkillsWanted:   f.Strings("skillsWanted"),
		Avatar:         f.String("avatar"),
		Rating:         f.Float("rating"),
		CompletedSwaps: f.Int("completedSwaps"),
		IsPublic:       f.BoolOr("isPublic", true),
		Status:         status,
		CreatedAt:      f.Time("createdAt"),
		UpdatedAt:      f.Time("updatedAt"),
	}
}

// DisplayName возвращает имя для показа другим пользователям
func (p UserProfile) DisplayName(fallback string) string {
	if p.Name != "" {
		return p.Name
	}
	if full := strings.TrimSpace(p.FirstName + " " + p.LastName); full != "" {
		return full
	}
	return fallback
}

// HasSkill проверяет вхождение подстроки в навыки (без учета регистра)
func (p UserProfile) HasSkill(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, skill := range append(append([]string{}, p.SkillsOffered...), p.SkillsWanted...) {
		if strings.Contains(strings.ToLower(skill), query) {
			return true
		}
	}
	return false
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
