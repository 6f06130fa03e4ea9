package ui

// Page is a top-level navigation target.
type Page string

const (
	PageHome      Page = "home"
	PageLost      Page = "lost"
	PageFound     Page = "found"
	PageDashboard Page = "dashboard"
)

// ParsePage maps a page name to a Page. Unknown names go home.
func ParsePage(name string) Page {
	switch Page(name) {
	case PageLost, PageFound, PageDashboard:
		return Page(name)
	}
	return PageHome
}

func (p Page) Path() string {
	switch p {
	case PageLost:
		return "/lost"
	case PageFound:
		return "/found"
	case PageDashboard:
		return "/dashboard"
	}
	return "/"
}
