package codec

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/store"
)

func TestLevel_Coercion(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
	}{
		{name: "int", in: 3, want: 3},
		{name: "int64", in: int64(3), want: 3},
		{name: "int32", in: int32(3), want: 3},
		{name: "float", in: float64(3), want: 3},
		{name: "json number", in: json.Number("3"), want: 3},
		{name: "string", in: "3", want: 3},
		{name: "padded string", in: " 4 ", want: 4},
		{name: "absent", in: nil, want: 1},
		{name: "garbage", in: "high", want: 1},
		{name: "fraction", in: 2.5, want: 1},
		{name: "above range", in: 9, want: 5},
		{name: "below range", in: -2, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Level(tc.in); got != tc.want {
				t.Fatalf("Level(%#v) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestPriority_OutOfRangeFallsBack(t *testing.T) {
	if got := Priority(json.Number("3")); got != user.PriorityHigh {
		t.Fatalf("expected high, got %d", got)
	}
	if got := Priority(7); got != user.DefaultPriority {
		t.Fatalf("expected default, got %d", got)
	}
	if got := Priority(nil); got != user.DefaultPriority {
		t.Fatalf("expected default, got %d", got)
	}
}

func TestInt64_Coercion(t *testing.T) {
	const ms = int64(1700000000)
	inputs := []any{int(ms), int32(ms), ms, float64(ms), float32(1 << 24), json.Number("1700000000"), " 1700000000 "}
	for _, in := range inputs {
		want := ms
		if _, ok := in.(float32); ok {
			want = 1 << 24
		}
		if got := Int64(in); got != want {
			t.Fatalf("Int64(%T %v) = %d, want %d", in, in, got, want)
		}
	}
	for _, in := range []any{nil, "soon", 1.5, true} {
		if got := Int64(in); got != 0 {
			t.Fatalf("Int64(%#v) = %d, want 0", in, got)
		}
	}
}

func TestDecodeUser(t *testing.T) {
	raw, err := store.Normalize(map[string]any{
		"profile": map[string]any{
			"name":       "Ana",
			"bio":        "plays guitar",
			"lastActive": int64(1700000000000),
		},
		"skills_to_teach": map[string]any{
			"s1": map[string]any{"title": "Guitar", "level": "4", "category": "c-music"},
		},
		"skills_to_learn": map[string]any{
			"s2": map[string]any{"title": "Go", "priority": 3},
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	u, err := DecodeUser("u1", raw)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.ID != "u1" || u.Profile.Name != "Ana" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !u.Profile.LastActive.Equal(time.UnixMilli(1700000000000)) {
		t.Fatalf("unexpected lastActive: %v", u.Profile.LastActive)
	}
	if u.SkillsToTeach["s1"].Level != 4 || u.SkillsToTeach["s1"].Category != "c-music" {
		t.Fatalf("unexpected teach skill: %+v", u.SkillsToTeach["s1"])
	}
	if u.SkillsToLearn["s2"].Priority != user.PriorityHigh {
		t.Fatalf("unexpected learn skill: %+v", u.SkillsToLearn["s2"])
	}
}

func TestDecodeUser_Corrupt(t *testing.T) {
	cases := map[string]any{
		"not an object":      "oops",
		"profile not object": map[string]any{"profile": "x"},
		"name not string":    map[string]any{"profile": map[string]any{"name": json.Number("5")}},
		"teach not object":   map[string]any{"skills_to_teach": []any{"a"}},
		"teach no title":     map[string]any{"skills_to_teach": map[string]any{"s1": map[string]any{"level": 2}}},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeUser("u1", raw)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestEncodeUser_EmitsEmptyCollections(t *testing.T) {
	m := EncodeUser(user.User{Profile: user.Profile{Name: "Ana"}})
	for _, k := range []string{"skills_to_teach", "skills_to_learn"} {
		v, ok := m[k].(map[string]any)
		if !ok || v == nil {
			t.Fatalf("expected explicit empty %s, got %#v", k, m[k])
		}
	}
}

func TestSkill_RoundTrip(t *testing.T) {
	in := skill.Skill{ID: "s1", Title: "Guitar", Category: "c1", Level: 3, UsersTeaching: []string{"u2", "u1"}}
	raw, err := store.Normalize(EncodeSkill(in))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	out, err := DecodeSkill("s1", raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Title != "Guitar" || out.Level != 3 {
		t.Fatalf("unexpected skill: %+v", out)
	}
	if len(out.UsersTeaching) != 2 || out.UsersTeaching[0] != "u1" || out.UsersTeaching[1] != "u2" {
		t.Fatalf("unexpected teachers: %v", out.UsersTeaching)
	}
}

func TestDecodeSkill_TeachersListForm(t *testing.T) {
	out, err := DecodeSkill("s1", map[string]any{
		"title":          "Go",
		"users_teaching": map[string]any{"0": "u3", "1": "u1"},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.UsersTeaching) != 2 || out.UsersTeaching[0] != "u1" {
		t.Fatalf("unexpected teachers: %v", out.UsersTeaching)
	}
}

func TestDecodeSkill_MissingTitle(t *testing.T) {
	if _, err := DecodeSkill("s1", map[string]any{"category": "c1"}); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDecodeCategory(t *testing.T) {
	c, err := DecodeCategory("c1", map[string]any{"name": "Music", "icon_url": "https://x/icon.png"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Name != "Music" || c.IconURL != "https://x/icon.png" {
		t.Fatalf("unexpected category: %+v", c)
	}
	if _, err := DecodeCategory("c2", map[string]any{"description": "x"}); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for missing name, got %v", err)
	}
}
