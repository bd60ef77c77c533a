package server

import (
	"fmt"
	"net/http"
)

type Access int

const (
	// AccessPublic needs no credentials.
	AccessPublic Access = iota
	// AccessSearchKey needs x-api-key to match SEARCH_API_KEY when one is set.
	AccessSearchKey
	// AccessAdmin needs x-api-key to match the rebuild key. Without a
	// configured key the endpoint is closed.
	AccessAdmin
)

type AccessRule struct {
	Method string
	Path   string
	Access Access
}

var endpointAccess = []AccessRule{
	{Method: http.MethodGet, Path: "/api/search", Access: AccessPublic},
	{Method: http.MethodGet, Path: "/api/search-index", Access: AccessSearchKey},
	{Method: http.MethodPost, Path: "/api/rebuild-index", Access: AccessAdmin},
	{Method: http.MethodGet, Path: "/api/index-status", Access: AccessAdmin},
	{Method: http.MethodPost, Path: "/api/contact", Access: AccessPublic},
	{Method: http.MethodGet, Path: "/api/locales", Access: AccessPublic},
	{Method: http.MethodGet, Path: "/api/locale/switch", Access: AccessPublic},
	{Method: http.MethodGet, Path: "/locales/{file}", Access: AccessPublic},
	{Method: http.MethodGet, Path: "/sitemap.xml", Access: AccessPublic},
	{Method: http.MethodGet, Path: "/healthz", Access: AccessPublic},
	{Method: http.MethodGet, Path: "/metrics", Access: AccessPublic},
}

func accessFor(method, path string) Access {
	for _, rule := range endpointAccess {
		if rule.Method == method && rule.Path == path {
			return rule.Access
		}
	}
	panic(fmt.Sprintf("missing access rule for %s %s", method, path))
}
