package search

import (
	"testing"

	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/metrics"
	"skill-swap/internal/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func usersSnapshot(t *testing.T) store.Snapshot {
	t.Helper()
	raw, err := store.Normalize(map[string]any{
		"u1": map[string]any{
			"profile": map[string]any{"name": "Ana Torres", "bio": "Music teacher"},
			"skills_to_teach": map[string]any{
				"s1": map[string]any{"title": "Guitar", "category": "c-music", "level": 2},
				"s2": map[string]any{"title": "Spanish", "category": "c-lang", "level": 5},
			},
		},
		"u2": map[string]any{
			"profile": map[string]any{"name": "Bruno", "bio": "backend dev"},
			"skills_to_teach": map[string]any{
				"s3": map[string]any{"title": "Go", "category": "c-tech", "level": "3"},
			},
		},
		"u3": map[string]any{
			"profile": map[string]any{"name": "Carla"},
			"skills_to_teach": map[string]any{
				"s4": map[string]any{"title": "Piano", "category": "c-music"},
			},
		},
		"u4": "corrupt",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return store.Snapshot{Key: "users", Value: raw}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEngine_Users(t *testing.T) {
	e := NewEngine(nil)
	snap := usersSnapshot(t)

	cases := []struct {
		name string
		c    Criteria
		want []string
	}{
		{name: "empty criteria returns every decodable user", c: Criteria{}, want: []string{"u1", "u2", "u3"}},
		{name: "text in name is case insensitive", c: Criteria{Text: "ANA"}, want: []string{"u1"}},
		{name: "text in bio", c: Criteria{Text: "backend"}, want: []string{"u2"}},
		{name: "text in taught skill title", c: Criteria{Text: "piano"}, want: []string{"u3"}},
		{name: "text in taught skill category", c: Criteria{Text: "c-tech"}, want: []string{"u2"}},
		{name: "category", c: Criteria{CategoryID: "c-music"}, want: []string{"u1", "u3"}},
		{name: "string level coerced", c: Criteria{MinLevel: 3}, want: []string{"u1", "u2"}},
		{name: "absent level counts as one", c: Criteria{CategoryID: "c-music", MinLevel: 2}, want: []string{"u1"}},
		{name: "category and level may match different skills", c: Criteria{CategoryID: "c-music", MinLevel: 5}, want: []string{"u1"}},
		{name: "all constraints must hold", c: Criteria{Text: "bruno", CategoryID: "c-music"}, want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Users(snap, tc.c)
			gotIDs := make([]string, 0, len(got))
			for _, u := range got {
				gotIDs = append(gotIDs, u.ID)
			}
			if !equal(gotIDs, tc.want) {
				t.Fatalf("got %v, want %v", gotIDs, tc.want)
			}
		})
	}
}

func TestEngine_SkillsLevelCoercion(t *testing.T) {
	raw, err := store.Normalize(map[string]any{
		"a": map[string]any{"title": "Go", "category": "tech", "level": "3"},
		"b": map[string]any{"title": "Rust", "category": "tech", "level": 3},
		"c": map[string]any{"title": "Zig", "category": "tech", "level": int64(3)},
		"d": map[string]any{"title": "Perl", "category": "tech"},
		"e": map[string]any{"category": "tech", "level": 5},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	snap := store.Snapshot{Key: "skills", Value: raw}
	e := NewEngine(nil)

	got := ids(e.Skills(snap, Criteria{MinLevel: 3}), func(s skill.Skill) string { return s.ID })
	if !equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("minLevel=3 got %v", got)
	}

	got = ids(e.Skills(snap, Criteria{MinLevel: 2}), func(s skill.Skill) string { return s.ID })
	if !equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("absent level must fail minLevel=2, got %v", got)
	}

	got = ids(e.Skills(snap, Criteria{Text: "TECH"}), func(s skill.Skill) string { return s.ID })
	if !equal(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("text should match category and skip untitled record, got %v", got)
	}
}

func TestEngine_Categories(t *testing.T) {
	raw, _ := store.Normalize(map[string]any{
		"c1": map[string]any{"name": "Music"},
		"c2": map[string]any{"name": "Languages", "description": "music of words"},
		"c3": map[string]any{"description": "no name"},
	})
	snap := store.Snapshot{Key: "categories", Value: raw}
	e := NewEngine(nil)

	got := e.Categories(snap, "mus")
	if len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("expected only c1 by name, got %+v", got)
	}
	if all := e.Categories(snap, ""); len(all) != 2 {
		t.Fatalf("expected both named categories, got %+v", all)
	}
}

func TestCriteria_IsEmpty(t *testing.T) {
	if !(Criteria{Text: "   "}).IsEmpty() {
		t.Fatalf("whitespace text should be empty")
	}
	if (Criteria{MinLevel: 1}).IsEmpty() {
		t.Fatalf("level constraint is not empty")
	}
}

func TestEngine_TextIsPlainSubstring(t *testing.T) {
	raw, _ := store.Normalize(map[string]any{
		"a": map[string]any{"title": "C  programming", "category": "tech"},
		"b": map[string]any{"title": "Pythonic idioms", "category": "tech"},
		"c": map[string]any{"title": "Learn python basics", "category": "tech"},
	})
	snap := store.Snapshot{Key: "skills", Value: raw}
	e := NewEngine(nil)

	cases := []struct {
		text string
		want []string
	}{
		{text: "C  PROGRAMMING", want: []string{"a"}},
		{text: "c programming", want: []string{}},
		{text: "python ", want: []string{"c"}},
		{text: "PYTHON", want: []string{"b", "c"}},
	}
	for _, tc := range cases {
		got := ids(e.Skills(snap, Criteria{Text: tc.text}), func(s skill.Skill) string { return s.ID })
		if !equal(got, tc.want) {
			t.Fatalf("text %q: got %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestEngine_EmptyCriteriaSkipsPredicates(t *testing.T) {
	e := NewEngine(nil)
	snap := usersSnapshot(t)
	allPasses := metrics.SearchPasses.WithLabelValues("user", "all")
	filteredPasses := metrics.SearchPasses.WithLabelValues("user", "filtered")
	beforeAll := testutil.ToFloat64(allPasses)
	beforeFiltered := testutil.ToFloat64(filteredPasses)

	plain := ids(e.Users(snap, Criteria{}), func(u user.User) string { return u.ID })
	explicit := ids(e.Users(snap, Criteria{Text: "", CategoryID: "", MinLevel: 0}), func(u user.User) string { return u.ID })

	if !equal(plain, []string{"u1", "u2", "u3"}) || !equal(plain, explicit) {
		t.Fatalf("expected every decodable user in order, got %v and %v", plain, explicit)
	}
	if got := testutil.ToFloat64(allPasses) - beforeAll; got != 2 {
		t.Fatalf("expected 2 unfiltered passes, got %v", got)
	}
	if got := testutil.ToFloat64(filteredPasses) - beforeFiltered; got != 0 {
		t.Fatalf("expected no filtered pass, got %v", got)
	}
}
