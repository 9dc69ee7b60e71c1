package skill

// Skill is an entry in the global skill catalog. UsersTeaching lists the ids
// of users that currently offer it, ordered by id.
type Skill struct {
	ID            string
	Title         string
	Category      string
	Description   string
	Level         int
	ImageURL      string
	UsersTeaching []string
}
