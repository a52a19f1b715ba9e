package tui

import (
	"strconv"
	"strings"
)

type page int

const (
	pageList page = iota
	pageAdd
	pageEdit
	pageNotFound
)

// Route is a parsed navigation target: "/", "/add", "/edit/:id", or anything
// else, which lands on the not-found page
type Route struct {
	page page
	id   int64
}

// Routes used by the application
var (
	RouteList     = Route{page: pageList}
	RouteAdd      = Route{page: pageAdd}
	RouteNotFound = Route{page: pageNotFound}
)

// RouteEdit returns the edit route for a task
func RouteEdit(id int64) Route {
	return Route{page: pageEdit, id: id}
}

// ParseRoute maps a path onto a route
func ParseRoute(path string) Route {
	path = strings.TrimSpace(path)
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	switch {
	case path == "/" || path == "":
		return RouteList
	case path == "/add":
		return RouteAdd
	case strings.HasPrefix(path, "/edit/"):
		id, err := strconv.ParseInt(strings.TrimPrefix(path, "/edit/"), 10, 64)
		if err != nil || id <= 0 {
			return RouteNotFound
		}
		return RouteEdit(id)
	}
	return RouteNotFound
}

// Path renders the route back into its path form
func (r Route) Path() string {
	switch r.page {
	case pageList:
		return "/"
	case pageAdd:
		return "/add"
	case pageEdit:
		return "/edit/" + strconv.FormatInt(r.id, 10)
	}
	return "/404"
}
