package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"skill-swap/internal/domain/category"
	"skill-swap/internal/domain/contact"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
)

var ErrDecode = errors.New("decode failed")

// DecodeError reports why a single record could not be turned into an
// entity. It matches ErrDecode with errors.Is.
type DecodeError struct {
	Kind   string
	Key    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %q: %s", e.Kind, e.Key, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func decodeErr(kind, key, format string, args ...any) error {
	return &DecodeError{Kind: kind, Key: key, Reason: fmt.Sprintf(format, args...)}
}

type fields struct {
	kind string
	key  string
	m    map[string]any
	err  error
}

func objectOf(kind, key string, raw any) (*fields, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, decodeErr(kind, key, "expected object, got %T", raw)
	}
	return &fields{kind: kind, key: key, m: m}, nil
}

func (f *fields) str(name string) string {
	v, ok := f.m[name]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		if f.err == nil {
			f.err = decodeErr(f.kind, f.key, "field %s: expected string, got %T", name, v)
		}
		return ""
	}
	return s
}

func (f *fields) object(name string) map[string]any {
	v, ok := f.m[name]
	if !ok || v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		if f.err == nil {
			f.err = decodeErr(f.kind, f.key, "field %s: expected object, got %T", name, v)
		}
		return nil
	}
	return m
}

func DecodeUser(key string, raw any) (user.User, error) {
	f, err := objectOf("user", key, raw)
	if err != nil {
		return user.User{}, err
	}

	u := user.User{
		ID:            key,
		SkillsToTeach: map[string]user.TeachSkill{},
		SkillsToLearn: map[string]user.LearnSkill{},
	}

	if p := f.object("profile"); p != nil {
		pf := &fields{kind: "user", key: key, m: p}
		u.Profile = user.Profile{
			Name:       pf.str("name"),
			Email:      pf.str("email"),
			PhotoURL:   pf.str("photoUrl"),
			Bio:        pf.str("bio"),
			LastActive: Millis(p["lastActive"]),
		}
		if pf.err != nil {
			return user.User{}, pf.err
		}
	}

	for id, entry := range f.object("skills_to_teach") {
		s, err := decodeTeachSkill(key, id, entry)
		if err != nil {
			return user.User{}, err
		}
		u.SkillsToTeach[id] = s
	}
	for id, entry := range f.object("skills_to_learn") {
		s, err := decodeLearnSkill(key, id, entry)
		if err != nil {
			return user.User{}, err
		}
		u.SkillsToLearn[id] = s
	}

	if f.err != nil {
		return user.User{}, f.err
	}
	return u, nil
}

func decodeTeachSkill(userID, skillID string, raw any) (user.TeachSkill, error) {
	f, err := objectOf("user", userID, raw)
	if err != nil {
		return user.TeachSkill{}, decodeErr("user", userID, "skills_to_teach/%s: expected object", skillID)
	}
	s := user.TeachSkill{
		Title:       f.str("title"),
		Level:       Level(f.m["level"]),
		Category:    f.str("category"),
		Description: f.str("description"),
	}
	if f.err != nil {
		return user.TeachSkill{}, f.err
	}
	if strings.TrimSpace(s.Title) == "" {
		return user.TeachSkill{}, decodeErr("user", userID, "skills_to_teach/%s: missing title", skillID)
	}
	return s, nil
}

func decodeLearnSkill(userID, skillID string, raw any) (user.LearnSkill, error) {
	f, err := objectOf("user", userID, raw)
	if err != nil {
		return user.LearnSkill{}, decodeErr("user", userID, "skills_to_learn/%s: expected object", skillID)
	}
	s := user.LearnSkill{
		Title:    f.str("title"),
		Priority: Priority(f.m["priority"]),
	}
	if f.err != nil {
		return user.LearnSkill{}, f.err
	}
	if strings.TrimSpace(s.Title) == "" {
		return user.LearnSkill{}, decodeErr("user", userID, "skills_to_learn/%s: missing title", skillID)
	}
	return s, nil
}

// EncodeUser always emits both skill collections, empty or not, so later
// partial updates under them have a stable parent.
func EncodeUser(u user.User) map[string]any {
	teach := make(map[string]any, len(u.SkillsToTeach))
	for id, s := range u.SkillsToTeach {
		teach[id] = EncodeTeachSkill(s)
	}
	learn := make(map[string]any, len(u.SkillsToLearn))
	for id, s := range u.SkillsToLearn {
		learn[id] = EncodeLearnSkill(s)
	}
	return map[string]any{
		"profile":         EncodeProfile(u.Profile),
		"skills_to_teach": teach,
		"skills_to_learn": learn,
	}
}

func EncodeProfile(p user.Profile) map[string]any {
	return map[string]any{
		"name":       p.Name,
		"email":      p.Email,
		"photoUrl":   p.PhotoURL,
		"bio":        p.Bio,
		"lastActive": ToMillis(p.LastActive),
	}
}

func EncodeTeachSkill(s user.TeachSkill) map[string]any {
	return map[string]any{
		"title":       s.Title,
		"level":       user.ClampLevel(s.Level),
		"category":    s.Category,
		"description": s.Description,
	}
}

func EncodeLearnSkill(s user.LearnSkill) map[string]any {
	return map[string]any{
		"title":    s.Title,
		"priority": user.NormalizePriority(s.Priority),
	}
}

func DecodeSkill(key string, raw any) (skill.Skill, error) {
	f, err := objectOf("skill", key, raw)
	if err != nil {
		return skill.Skill{}, err
	}
	s := skill.Skill{
		ID:          key,
		Title:       f.str("title"),
		Category:    f.str("category"),
		Description: f.str("description"),
		Level:       Level(f.m["level"]),
		ImageURL:    f.str("imageUrl"),
	}
	if f.err != nil {
		return skill.Skill{}, f.err
	}
	if strings.TrimSpace(s.Title) == "" {
		return skill.Skill{}, decodeErr("skill", key, "missing title")
	}

	teachers, err := decodeIDSet(key, f.m["users_teaching"])
	if err != nil {
		return skill.Skill{}, err
	}
	s.UsersTeaching = teachers
	return s, nil
}

// decodeIDSet accepts the set form {id: true} as well as the list form
// written by older clients, either as an array or as an index keyed object.
func decodeIDSet(key string, raw any) ([]string, error) {
	seen := map[string]struct{}{}
	add := func(id string) {
		if id = strings.TrimSpace(id); id != "" {
			seen[id] = struct{}{}
		}
	}

	switch t := raw.(type) {
	case nil:
	case map[string]any:
		for k, v := range t {
			switch vv := v.(type) {
			case bool:
				if vv {
					add(k)
				}
			case string:
				add(vv)
			}
		}
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok {
				add(s)
			}
		}
	default:
		return nil, decodeErr("skill", key, "users_teaching: unexpected %T", raw)
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func EncodeSkill(s skill.Skill) map[string]any {
	teachers := make(map[string]any, len(s.UsersTeaching))
	for _, id := range s.UsersTeaching {
		teachers[id] = true
	}
	return map[string]any{
		"title":          s.Title,
		"category":       s.Category,
		"description":    s.Description,
		"level":          user.ClampLevel(s.Level),
		"imageUrl":       s.ImageURL,
		"users_teaching": teachers,
	}
}

func DecodeCategory(key string, raw any) (category.Category, error) {
	f, err := objectOf("category", key, raw)
	if err != nil {
		return category.Category{}, err
	}
	c := category.Category{
		ID:          key,
		Name:        f.str("name"),
		Description: f.str("description"),
		IconURL:     f.str("icon_url"),
	}
	if f.err != nil {
		return category.Category{}, f.err
	}
	if strings.TrimSpace(c.Name) == "" {
		return category.Category{}, decodeErr("category", key, "missing name")
	}
	return c, nil
}

func EncodeCategory(c category.Category) map[string]any {
	return map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"icon_url":    c.IconURL,
	}
}

func DecodeFavorite(ownerID, targetID string, raw any) (contact.Favorite, error) {
	f, err := objectOf("favorite", targetID, raw)
	if err != nil {
		return contact.Favorite{}, err
	}
	fav := contact.Favorite{
		OwnerID:   ownerID,
		TargetID:  targetID,
		CreatedAt: Millis(f.m["timestamp"]),
		Note:      f.str("notes"),
	}
	return fav, f.err
}

func EncodeFavorite(fav contact.Favorite) map[string]any {
	return map[string]any{
		"timestamp": ToMillis(fav.CreatedAt),
		"notes":     fav.Note,
	}
}

func DecodeRecentContact(ownerID, targetID string, raw any) (contact.RecentContact, error) {
	f, err := objectOf("recent_contact", targetID, raw)
	if err != nil {
		return contact.RecentContact{}, err
	}
	return contact.RecentContact{
		OwnerID:         ownerID,
		TargetID:        targetID,
		LastContactedAt: Millis(f.m["timestamp"]),
	}, nil
}

func EncodeRecentContact(rc contact.RecentContact) map[string]any {
	return map[string]any{
		"timestamp": ToMillis(rc.LastContactedAt),
	}
}

// Now is the clock used for stamping timestamps at millisecond precision.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
