package entity

import "strings"

// PermissionSetMatches implements the Permission Engine's matching rules
// (§4.3): a permission is "action:resource" or the literal "*". required is
// satisfied if it is present verbatim, or some entry in granted matches it
// by exactly one of: "*" matches anything; "action:*" matches any resource
// for that action; "action:prefix*" matches any resource with that prefix.
// No other wildcard forms are recognized. This is a total function: it
// never panics and never needs the caller to pre-validate input shape.
func PermissionSetMatches(granted []string, required string) bool {
	for _, perm := range granted {
		if permissionMatches(perm, required) {
			return true
		}
	}
	return false
}

func permissionMatches(pattern, required string) bool {
	if pattern == required {
		return true
	}
	if pattern == "*" {
		return true
	}

	patAction, patResource, ok := splitPermission(pattern)
	if !ok {
		return false
	}
	reqAction, reqResource, ok := splitPermission(required)
	if !ok {
		return false
	}
	if patAction != reqAction {
		return false
	}
	if patResource == "*" {
		return true
	}
	if strings.HasSuffix(patResource, "*") {
		prefix := strings.TrimSuffix(patResource, "*")
		return strings.HasPrefix(reqResource, prefix)
	}
	return patResource == reqResource
}

func splitPermission(s string) (action, resource string, ok bool) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}
