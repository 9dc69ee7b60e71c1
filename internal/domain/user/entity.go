package user

import "time"

const (
	MinLevel     = 1
	MaxLevel     = 5
	DefaultLevel = MinLevel

	PriorityLow     = 1
	PriorityMedium  = 2
	PriorityHigh    = 3
	DefaultPriority = PriorityMedium
)

type User struct {
	ID            string
	Profile       Profile
	SkillsToTeach map[string]TeachSkill
	SkillsToLearn map[string]LearnSkill
}

type Profile struct {
	Name       string
	Email      string
	PhotoURL   string
	Bio        string
	LastActive time.Time
}

// TeachSkill is a user's own entry for a skill they offer. Level is always
// within [MinLevel, MaxLevel] once decoded.
type TeachSkill struct {
	Title       string
	Level       int
	Category    string
	Description string
}

type LearnSkill struct {
	Title    string
	Priority int
}

func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

func NormalizePriority(p int) int {
	if p < PriorityLow || p > PriorityHigh {
		return DefaultPriority
	}
	return p
}
