package search

import (
	"log"
	"strings"

	"skill-swap/internal/codec"
	"skill-swap/internal/domain/category"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/metrics"
	"skill-swap/internal/store"
)

// Engine evaluates criteria against a collection snapshot. Records that
// cannot be decoded are skipped and counted; the rest of the collection is
// still evaluated. Results keep the snapshot's child order. Empty criteria
// skip predicate evaluation and return every decodable record.
type Engine struct {
	logger *log.Logger
}

func NewEngine(logger *log.Logger) *Engine {
	return &Engine{logger: logger}
}

// Users matches a user when each non-empty constraint holds:
//   - text appears in the name, the bio, or the title or category of any
//     skill the user teaches
//   - some taught skill is in the category
//   - some taught skill has at least the minimum level
//
// Category and level are checked independently, so they may be satisfied
// by different skills.
func (e *Engine) Users(snap store.Snapshot, c Criteria) []user.User {
	if c.IsEmpty() {
		return all(e, "user", snap, codec.DecodeUser)
	}
	q := c.compile()
	return filter(e, "user", snap, codec.DecodeUser, func(u user.User) bool {
		return matchUser(u, q)
	})
}

func (e *Engine) Skills(snap store.Snapshot, c Criteria) []skill.Skill {
	if c.IsEmpty() {
		return all(e, "skill", snap, codec.DecodeSkill)
	}
	q := c.compile()
	return filter(e, "skill", snap, codec.DecodeSkill, func(s skill.Skill) bool {
		if q.text != "" && !containsFold(s.Title, q.text) && !containsFold(s.Category, q.text) {
			return false
		}
		if q.category != "" && s.Category != q.category {
			return false
		}
		if q.minLevel > 0 && s.Level < q.minLevel {
			return false
		}
		return true
	})
}

// Categories matches on name only.
func (e *Engine) Categories(snap store.Snapshot, text string) []category.Category {
	if strings.TrimSpace(text) == "" {
		return all(e, "category", snap, codec.DecodeCategory)
	}
	needle := lowerText(text)
	return filter(e, "category", snap, codec.DecodeCategory, func(c category.Category) bool {
		return containsFold(c.Name, needle)
	})
}

func matchUser(u user.User, q query) bool {
	textOK := q.text == "" ||
		containsFold(u.Profile.Name, q.text) ||
		containsFold(u.Profile.Bio, q.text)
	categoryOK := q.category == ""
	levelOK := q.minLevel <= 0

	for _, s := range u.SkillsToTeach {
		if textOK && categoryOK && levelOK {
			break
		}
		if !textOK && (containsFold(s.Title, q.text) || containsFold(s.Category, q.text)) {
			textOK = true
		}
		if !categoryOK && s.Category == q.category {
			categoryOK = true
		}
		if !levelOK && s.Level >= q.minLevel {
			levelOK = true
		}
	}
	return textOK && categoryOK && levelOK
}

func all[T any](e *Engine, kind string, snap store.Snapshot, decode func(string, any) (T, error)) []T {
	metrics.SearchPasses.WithLabelValues(kind, "all").Inc()
	return collect(e, kind, snap, decode, nil)
}

func filter[T any](e *Engine, kind string, snap store.Snapshot, decode func(string, any) (T, error), match func(T) bool) []T {
	metrics.SearchPasses.WithLabelValues(kind, "filtered").Inc()
	return collect(e, kind, snap, decode, match)
}

// collect decodes every child and keeps those match accepts. A nil match
// keeps all of them.
func collect[T any](e *Engine, kind string, snap store.Snapshot, decode func(string, any) (T, error), match func(T) bool) []T {
	children := snap.Children()
	out := make([]T, 0, len(children))
	for _, child := range children {
		v, err := decode(child.Key, child.Value)
		if err != nil {
			metrics.SearchDecodeSkips.WithLabelValues(kind).Inc()
			if e != nil && e.logger != nil {
				e.logger.Printf("[Search] skipping %s %s: %v", kind, child.Key, err)
			}
			continue
		}
		if match == nil || match(v) {
			out = append(out, v)
		}
	}
	return out
}
