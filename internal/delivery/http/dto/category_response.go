package dto

import "skill-swap/internal/domain/category"

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
}

func NewCategoryResponse(c category.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, IconURL: c.IconURL}
}

func NewCategoryListResponse(items []category.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(items))
	for _, c := range items {
		out = append(out, NewCategoryResponse(c))
	}
	return out
}
