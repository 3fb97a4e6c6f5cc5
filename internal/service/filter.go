package service

import "strings"

// The admin screens filter over the rows they already fetched rather than
// issuing a server-side search query. Matching is a case-insensitive
// substring check over the name/email fields, combined with an optional
// organization filter.

func matches(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// FilterOrganizations narrows an organization list by name substring
func FilterOrganizations(orgs []OrganizationSummary, query string) []OrganizationSummary {
	filtered := make([]OrganizationSummary, 0, len(orgs))
	for _, o := range orgs {
		if matches(query, o.Name) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// FilterProperties narrows a property list by name substring and optional
// organization
func FilterProperties(properties []PropertySummary, query, organizationID string) []PropertySummary {
	filtered := make([]PropertySummary, 0, len(properties))
	for _, p := range properties {
		if organizationID != "" && p.OrganizationID != organizationID {
			continue
		}
		if matches(query, p.Name, p.OrganizationName) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FilterUserProfiles narrows a profile list by name/email substring and
// optional organization
func FilterUserProfiles(profiles []UserProfileSummary, query, organizationID string) []UserProfileSummary {
	filtered := make([]UserProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		if organizationID != "" && p.OrganizationID != organizationID {
			continue
		}
		if matches(query, p.FirstName, p.LastName, p.Email) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FilterAdminUsers narrows an admin grant list by user name/email substring
// and optional organization
func FilterAdminUsers(admins []AdminUserSummary, query, organizationID string) []AdminUserSummary {
	filtered := make([]AdminUserSummary, 0, len(admins))
	for _, a := range admins {
		if organizationID != "" && a.OrganizationID != organizationID {
			continue
		}
		if matches(query, a.UserName, a.UserEmail) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
