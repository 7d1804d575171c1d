package domain

// Event is a normalized entry from the external discovery API.
type Event struct {
	Name     string
	URL      string
	Date     string
	Time     string
	Venue    string
	City     string
	ImageURL string
}
