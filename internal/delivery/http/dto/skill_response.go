package dto

import "skill-swap/internal/domain/skill"

type SkillResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Level         int      `json:"level"`
	ImageURL      string   `json:"image_url"`
	UsersTeaching []string `json:"users_teaching"`
}

func NewSkillResponse(s skill.Skill) SkillResponse {
	teachers := s.UsersTeaching
	if teachers == nil {
		teachers = []string{}
	}
	return SkillResponse{
		ID:            s.ID,
		Title:         s.Title,
		Category:      s.Category,
		Description:   s.Description,
		Level:         s.Level,
		ImageURL:      s.ImageURL,
		UsersTeaching: teachers,
	}
}

func NewSkillListResponse(items []skill.Skill) []SkillResponse {
	out := make([]SkillResponse, 0, len(items))
	for _, s := range items {
		out = append(out, NewSkillResponse(s))
	}
	return out
}
