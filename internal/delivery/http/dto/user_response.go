package dto

import (
	"sort"
	"time"

	"skill-swap/internal/domain/user"
)

type ProfileResponse struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	PhotoURL   string     `json:"photo_url"`
	Bio        string     `json:"bio"`
	LastActive *time.Time `json:"last_active"`
}

type TeachSkillResponse struct {
	SkillID     string `json:"skill_id"`
	Title       string `json:"title"`
	Level       int    `json:"level"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type LearnSkillResponse struct {
	SkillID  string `json:"skill_id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

type UserResponse struct {
	ID            string               `json:"id"`
	Profile       ProfileResponse      `json:"profile"`
	SkillsToTeach []TeachSkillResponse `json:"skills_to_teach"`
	SkillsToLearn []LearnSkillResponse `json:"skills_to_learn"`
}

func NewUserResponse(u user.User) UserResponse {
	var lastActive *time.Time
	if !u.Profile.LastActive.IsZero() {
		t := u.Profile.LastActive.UTC()
		lastActive = &t
	}

	teach := make([]TeachSkillResponse, 0, len(u.SkillsToTeach))
	for _, id := range sortedKeys(u.SkillsToTeach) {
		s := u.SkillsToTeach[id]
		teach = append(teach, TeachSkillResponse{
			SkillID:     id,
			Title:       s.Title,
			Level:       s.Level,
			Category:    s.Category,
			Description: s.Description,
		})
	}
	learn := make([]LearnSkillResponse, 0, len(u.SkillsToLearn))
	for _, id := range sortedKeys(u.SkillsToLearn) {
		s := u.SkillsToLearn[id]
		learn = append(learn, LearnSkillResponse{SkillID: id, Title: s.Title, Priority: s.Priority})
	}

	return UserResponse{
		ID: u.ID,
		Profile: ProfileResponse{
			Name:       u.Profile.Name,
			Email:      u.Profile.Email,
			PhotoURL:   u.Profile.PhotoURL,
			Bio:        u.Profile.Bio,
			LastActive: lastActive,
		},
		SkillsToTeach: teach,
		SkillsToLearn: learn,
	}
}

func NewUserListResponse(users []user.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
