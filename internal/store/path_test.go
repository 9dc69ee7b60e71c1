package store

import (
	"errors"
	"testing"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "/", want: nil},
		{in: "/users", want: []string{"users"}},
		{in: "users/u1/profile/", want: []string{"users", "u1", "profile"}},
	}
	for _, tc := range cases {
		got, err := Split(tc.in)
		if err != nil {
			t.Fatalf("Split(%q) unexpected err: %v", tc.in, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("Split(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("Split(%q) = %v, want %v", tc.in, got, tc.want)
			}
		}
	}
}

func TestSplit_RejectsInvalidKeys(t *testing.T) {
	for _, in := range []string{"/users//u1", "/users/a.b", "/users/$x", "/skills/[0]"} {
		if _, err := Split(in); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("Split(%q) expected ErrInvalidPath, got %v", in, err)
		}
	}
}

func TestOverlaps(t *testing.T) {
	users := []string{"users"}
	user := []string{"users", "u1"}
	other := []string{"users", "u2", "profile"}

	if !Overlaps(users, user) || !Overlaps(user, users) {
		t.Fatalf("ancestor and descendant must overlap")
	}
	if Overlaps(user, other) {
		t.Fatalf("siblings must not overlap")
	}
	if !Overlaps(nil, other) {
		t.Fatalf("root overlaps everything")
	}
}

func TestSetAt(t *testing.T) {
	var root any = map[string]any{}
	root = SetAt(root, []string{"users", "u1", "profile", "name"}, "Ana")
	root = SetAt(root, []string{"users", "u2"}, map[string]any{"profile": map[string]any{}})

	v, ok := GetAt(root, []string{"users", "u1", "profile", "name"})
	if !ok || v != "Ana" {
		t.Fatalf("expected nested value, got %v ok=%v", v, ok)
	}

	root = SetAt(root, []string{"users", "u1"}, nil)
	if _, ok := GetAt(root, []string{"users", "u1"}); ok {
		t.Fatalf("expected u1 removed")
	}
	if _, ok := GetAt(root, []string{"users", "u2"}); !ok {
		t.Fatalf("expected u2 kept")
	}
}

func TestNormalize_UsesJSONNumbers(t *testing.T) {
	v, err := Normalize(map[string]any{"level": 3, "skip": nil})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m := v.(map[string]any)
	if _, ok := m["skip"]; ok {
		t.Fatalf("expected nulls pruned")
	}
	if m["level"].(interface{ String() string }).String() != "3" {
		t.Fatalf("expected json.Number 3, got %#v", m["level"])
	}
}

func TestSnapshot_ChildrenOrderedByKey(t *testing.T) {
	s := Snapshot{Key: "users", Value: map[string]any{"b": 1, "a": 2, "c": 3}}
	kids := s.Children()
	if len(kids) != 3 || kids[0].Key != "a" || kids[1].Key != "b" || kids[2].Key != "c" {
		t.Fatalf("unexpected order: %+v", kids)
	}
	if s.Child("missing").Exists() {
		t.Fatalf("missing child must not exist")
	}
}

func TestIDGenerator_Monotonic(t *testing.T) {
	g := NewIDGenerator()
	prev := g.New()
	for i := 0; i < 1000; i++ {
		next := g.New()
		if next <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, next)
		}
		prev = next
	}
}
