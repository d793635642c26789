// Package state holds the reader's UI state and the actions that change it.
package state

import (
	"github.com/dailypost/dailypost/models"
)

// PostsPerPage is the feed page size.
const PostsPerPage = 6

// State is the application state record.
type State struct {
	SearchQuery        string
	ActiveCategory     string
	SelectedPost       *models.Post
	CurrentPage        int
	PostsPerPage       int
	AdminMode          bool
	AdminAuthenticated bool
	MobileMenuOpen     bool
	Loading            bool
	Error              string
}

// Initial returns the state a fresh session starts in.
func Initial() State {
	return State{
		ActiveCategory: models.CategoryAll,
		CurrentPage:    1,
		PostsPerPage:   PostsPerPage,
	}
}

// Action is one of the action types declared in this package.
type Action interface {
	action()
}

type (
	// SetSearchQuery replaces the search text and rewinds to page 1.
	SetSearchQuery struct{ Query string }
	// SetActiveCategory replaces the category filter and rewinds to page 1.
	SetActiveCategory struct{ Category string }
	// SetSelectedPost opens the detail view, or closes it when Post is nil.
	SetSelectedPost struct{ Post *models.Post }
	// SetCurrentPage moves the pagination cursor.
	SetCurrentPage struct{ Page int }
	ToggleMobileMenu struct{}
	SetAdminMode     struct{ Enabled bool }
	// SetAdminAuthenticated is persisted by the PersistAdminAuth observer.
	SetAdminAuthenticated struct{ Authenticated bool }
	// AdminLogout clears both admin flags.
	AdminLogout struct{}
	SetLoading  struct{ Loading bool }
	// SetError sets the transient error message; empty clears it.
	SetError struct{ Err string }
)

func (SetSearchQuery) action()        {}
func (SetActiveCategory) action()     {}
func (SetSelectedPost) action()       {}
func (SetCurrentPage) action()        {}
func (ToggleMobileMenu) action()      {}
func (SetAdminMode) action()          {}
func (SetAdminAuthenticated) action() {}
func (AdminLogout) action()           {}
func (SetLoading) action()            {}
func (SetError) action()              {}

// Reduce applies a to s and returns the new state. It has no side effects;
// a nil or unknown action returns s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetSearchQuery:
		s.SearchQuery = a.Query
		s.CurrentPage = 1
	case SetActiveCategory:
		s.ActiveCategory = a.Category
		if s.ActiveCategory == "" {
			s.ActiveCategory = models.CategoryAll
		}
		s.CurrentPage = 1
	case SetSelectedPost:
		s.SelectedPost = a.Post
	case SetCurrentPage:
		s.CurrentPage = a.Page
		if s.CurrentPage < 1 {
			s.CurrentPage = 1
		}
	case ToggleMobileMenu:
		s.MobileMenuOpen = !s.MobileMenuOpen
	case SetAdminMode:
		s.AdminMode = a.Enabled
	case SetAdminAuthenticated:
		s.AdminAuthenticated = a.Authenticated
	case AdminLogout:
		s.AdminMode = false
		s.AdminAuthenticated = false
	case SetLoading:
		s.Loading = a.Loading
	case SetError:
		s.Error = a.Err
	}
	return s
}
