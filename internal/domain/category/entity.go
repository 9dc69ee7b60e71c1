package category

type Category struct {
	ID          string
	Name        string
	Description string
	IconURL     string
}
