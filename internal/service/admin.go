package service

import (
	"errors"
	"fmt"
	"strings"

	"leasing-portal/internal/model"
	"leasing-portal/pkg/database"
	"leasing-portal/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ValidationError marks a request rejected before any write was issued
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AdminPermissions describes what the admin panel lets a user do
type AdminPermissions struct {
	IsAdmin                bool   `json:"is_admin"`
	AdminLevel             string `json:"admin_level"`
	CanManageOrganizations bool   `json:"can_manage_organizations"`
	CanManageProperties    bool   `json:"can_manage_properties"`
	CanManageUsers         bool   `json:"can_manage_users"`
	CanViewAllData         bool   `json:"can_view_all_data"`
	OrganizationID         string `json:"organization_id"`
}

// OrganizationSummary is an organization enriched for the admin list view
type OrganizationSummary struct {
	model.Organization
	PropertiesCount int64 `json:"properties_count"`
	UsersCount      int64 `json:"users_count"`
}

// PropertySummary is a property enriched for the admin list view
type PropertySummary struct {
	model.Property
	OrganizationName string `json:"organization_name,omitempty"`
	CallsCount       int64  `json:"calls_count"`
}

// UserProfileSummary is a user profile enriched for the admin list view
type UserProfileSummary struct {
	model.UserProfile
	Email            string `json:"email,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	IsAdmin          bool   `json:"is_admin"`
	AdminLevel       string `json:"admin_level"`
}

// AdminUserSummary is an admin grant enriched for the admin list view
type AdminUserSummary struct {
	model.AdminUser
	UserEmail        string `json:"user_email,omitempty"`
	UserName         string `json:"user_name,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
}

// AdminCapabilities carries the optional capability flags for admin grants
type AdminCapabilities struct {
	CanManageOrganizations *bool `json:"can_manage_organizations,omitempty"`
	CanManageProperties    *bool `json:"can_manage_properties,omitempty"`
	CanManageUsers         *bool `json:"can_manage_users,omitempty"`
	CanViewAllData         *bool `json:"can_view_all_data,omitempty"`
	IsActive               *bool `json:"is_active,omitempty"`
}

// AdminService performs the admin panel's CRUD over organizations,
// properties, user profiles and admin grants
type AdminService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAdminService creates an AdminService
func NewAdminService(db *gorm.DB, log *zap.Logger) *AdminService {
	return &AdminService{db: db, log: log}
}

// GetAdminPermissions returns the user's admin permissions, or nil when
// the user holds no active admin grant
func (s *AdminService) GetAdminPermissions(userID string) (*AdminPermissions, error) {
	var admin model.AdminUser
	var err error
	if !database.HasActiveColumn("admin_users") {
		err = s.db.Where("user_id = ?", userID).First(&admin).Error
	} else {
		err = s.db.Where("user_id = ? AND is_active = ?", userID, true).First(&admin).Error
		if database.IsUnknownColumnErr(err, "is_active") {
			database.MarkActiveColumnMissing("admin_users")
			prometheus.RecordSchemaFallback("admin_users")
			err = s.db.Where("user_id = ?", userID).First(&admin).Error
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &AdminPermissions{
		IsAdmin:                true,
		AdminLevel:             admin.AdminLevel,
		CanManageOrganizations: admin.CanManageOrganizations,
		CanManageProperties:    admin.CanManageProperties,
		CanManageUsers:         admin.CanManageUsers,
		CanViewAllData:         admin.CanViewAllData,
		OrganizationID:         admin.OrganizationID,
	}, nil
}

// IsAdmin reports whether the user holds an active admin grant
func (s *AdminService) IsAdmin(userID string) bool {
	perms, err := s.GetAdminPermissions(userID)
	if err != nil {
		s.log.Error("Failed to check admin status", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return perms != nil
}

// createWithActiveFallback inserts a row, omitting is_active when the live
// schema lacks the column. An unknown-column failure flips the cached
// capability and retries once without the column.
func (s *AdminService) createWithActiveFallback(table string, value interface{}) error {
	if !database.HasActiveColumn(table) {
		return s.db.Omit("is_active").Create(value).Error
	}

	err := s.db.Create(value).Error
	if database.IsUnknownColumnErr(err, "is_active") {
		s.log.Warn("is_active column not found, creating without it", zap.String("table", table))
		database.MarkActiveColumnMissing(table)
		prometheus.RecordSchemaFallback(table)
		err = s.db.Omit("is_active").Create(value).Error
	}
	return err
}

// updateWithActiveFallback applies a column-map update with the same
// is_active compatibility treatment as createWithActiveFallback
func (s *AdminService) updateWithActiveFallback(table string, modelPtr interface{}, id string, updates map[string]interface{}) error {
	if !database.HasActiveColumn(table) {
		delete(updates, "is_active")
	}
	if len(updates) == 0 {
		return nil
	}

	err := s.db.Model(modelPtr).Where("id = ?", id).Updates(updates).Error
	if database.IsUnknownColumnErr(err, "is_active") {
		s.log.Warn("is_active column not found, updating without it", zap.String("table", table))
		database.MarkActiveColumnMissing(table)
		prometheus.RecordSchemaFallback(table)
		delete(updates, "is_active")
		if len(updates) == 0 {
			return nil
		}
		err = s.db.Model(modelPtr).Where("id = ?", id).Updates(updates).Error
	}
	return err
}

// ORGANIZATIONS

// ListOrganizations returns all organizations with property and user counts
func (s *AdminService) ListOrganizations() ([]OrganizationSummary, error) {
	var orgs []model.Organization
	if err := s.db.Order("created_at DESC").Find(&orgs).Error; err != nil {
		return nil, err
	}

	propertyCounts, err := s.groupCounts(&model.Property{}, "organization_id")
	if err != nil {
		s.log.Error("Failed to count properties per organization", zap.Error(err))
	}
	userCounts, err := s.groupCounts(&model.UserProfile{}, "organization_id")
	if err != nil {
		s.log.Error("Failed to count users per organization", zap.Error(err))
	}

	summaries := make([]OrganizationSummary, len(orgs))
	for i, org := range orgs {
		summaries[i] = OrganizationSummary{
			Organization:    org,
			PropertiesCount: propertyCounts[org.ID],
			UsersCount:      userCounts[org.ID],
		}
	}
	return summaries, nil
}

// CreateOrganization creates an organization, active by default
func (s *AdminService) CreateOrganization(name string) (*model.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	org := model.Organization{Name: name, IsActive: true}
	if err := s.createWithActiveFallback("organizations", &org); err != nil {
		return nil, err
	}
	// Schemas without the column behave as always-active
	org.IsActive = true
	return &org, nil
}

// UpdateOrganization renames and/or toggles an organization
func (s *AdminService) UpdateOrganization(id, name string, isActive *bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}

	updates := map[string]interface{}{"name": name}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	return s.updateWithActiveFallback("organizations", &model.Organization{}, id, updates)
}

// DeleteOrganization removes an organization row
func (s *AdminService) DeleteOrganization(id string) error {
	return s.db.Where("id = ?", id).Delete(&model.Organization{}).Error
}

// PROPERTIES

// ListProperties returns properties with organization name and call counts,
// optionally scoped to one organization
func (s *AdminService) ListProperties(organizationID string) ([]PropertySummary, error) {
	query := s.db.Order("created_at DESC")
	if organizationID != "" {
		query = query.Where("organization_id = ?", organizationID)
	}

	var properties []model.Property
	if err := query.Find(&properties).Error; err != nil {
		return nil, err
	}

	orgNames, err := s.organizationNames()
	if err != nil {
		s.log.Error("Failed to fetch organization names", zap.Error(err))
	}
	callCounts, err := s.groupCounts(&model.CallRecord{}, "property_id")
	if err != nil {
		s.log.Error("Failed to count calls per property", zap.Error(err))
	}

	summaries := make([]PropertySummary, len(properties))
	for i, p := range properties {
		summaries[i] = PropertySummary{
			Property:         p,
			OrganizationName: orgNames[p.OrganizationID],
			CallsCount:       callCounts[p.ID],
		}
	}
	return summaries, nil
}

// CreateProperty creates a property, active by default
func (s *AdminService) CreateProperty(organizationID, name string, retellAgentID *string) (*PropertySummary, error) {
	name = strings.TrimSpace(name)
	if organizationID == "" {
		return nil, &ValidationError{Field: "organization_id", Message: "organization_id is required"}
	}
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	property := model.Property{
		OrganizationID: organizationID,
		Name:           name,
		RetellAgentID:  retellAgentID,
		IsActive:       true,
	}
	if err := s.createWithActiveFallback("properties", &property); err != nil {
		return nil, err
	}
	property.IsActive = true

	summary := PropertySummary{Property: property}
	var org model.Organization
	if err := s.db.Select("name").First(&org, "id = ?", organizationID).Error; err == nil {
		summary.OrganizationName = org.Name
	}
	return &summary, nil
}

// UpdateProperty updates a property's name, agent binding and active flag
func (s *AdminService) UpdateProperty(id, name string, retellAgentID *string, isActive *bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}

	updates := map[string]interface{}{
		"name":            name,
		"retell_agent_id": retellAgentID,
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	return s.updateWithActiveFallback("properties", &model.Property{}, id, updates)
}

// DeleteProperty removes a property row
func (s *AdminService) DeleteProperty(id string) error {
	return s.db.Where("id = ?", id).Delete(&model.Property{}).Error
}

// USER PROFILES

// ListUserProfiles returns user profiles with email, organization name and
// admin status, optionally scoped to one organization
func (s *AdminService) ListUserProfiles(organizationID string) ([]UserProfileSummary, error) {
	query := s.db.Order("created_at DESC")
	if organizationID != "" {
		query = query.Where("organization_id = ?", organizationID)
	}

	var profiles []model.UserProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return []UserProfileSummary{}, nil
	}

	orgNames, err := s.organizationNames()
	if err != nil {
		s.log.Error("Failed to fetch organization names", zap.Error(err))
	}

	userIDs := make([]string, len(profiles))
	for i, p := range profiles {
		userIDs[i] = p.UserID
	}
	emails := s.userEmails(userIDs)

	adminMap := map[string]model.AdminUser{}
	var admins []model.AdminUser
	if err := s.db.Where("user_id IN ?", userIDs).Find(&admins).Error; err != nil {
		s.log.Error("Failed to fetch admin data for profiles", zap.Error(err))
	} else {
		for _, a := range admins {
			adminMap[a.UserID] = a
		}
	}

	summaries := make([]UserProfileSummary, len(profiles))
	for i, p := range profiles {
		summary := UserProfileSummary{
			UserProfile:      p,
			Email:            emails[p.UserID],
			OrganizationName: orgNames[p.OrganizationID],
			AdminLevel:       "user",
		}
		if summary.Email == "" {
			summary.Email = placeholderEmail(p.UserID)
		}
		if admin, ok := adminMap[p.UserID]; ok {
			summary.IsAdmin = admin.IsActive
			summary.AdminLevel = admin.AdminLevel
		}
		summaries[i] = summary
	}
	return summaries, nil
}

// CreateUserProfile creates a profile binding a user to an organization
func (s *AdminService) CreateUserProfile(userID, organizationID, firstName, lastName string) (*UserProfileSummary, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Message: "user_id is required"}
	}
	if organizationID == "" {
		return nil, &ValidationError{Field: "organization_id", Message: "organization_id is required"}
	}

	profile := model.UserProfile{
		UserID:         userID,
		OrganizationID: organizationID,
		FirstName:      strings.TrimSpace(firstName),
		LastName:       strings.TrimSpace(lastName),
		IsActive:       true,
	}
	if err := s.createWithActiveFallback("user_profiles", &profile); err != nil {
		return nil, err
	}
	profile.IsActive = true

	summary := UserProfileSummary{UserProfile: profile, AdminLevel: "user"}
	emails := s.userEmails([]string{userID})
	summary.Email = emails[userID]
	if summary.Email == "" {
		summary.Email = placeholderEmail(userID)
	}
	var org model.Organization
	if err := s.db.Select("name").First(&org, "id = ?", organizationID).Error; err == nil {
		summary.OrganizationName = org.Name
	}
	return &summary, nil
}

// UpdateUserProfile updates a profile's name and active flag
func (s *AdminService) UpdateUserProfile(id, firstName, lastName string, isActive *bool) error {
	updates := map[string]interface{}{
		"first_name": strings.TrimSpace(firstName),
		"last_name":  strings.TrimSpace(lastName),
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	return s.updateWithActiveFallback("user_profiles", &model.UserProfile{}, id, updates)
}

// DeleteUserProfile removes a profile row
func (s *AdminService) DeleteUserProfile(id string) error {
	return s.db.Where("id = ?", id).Delete(&model.UserProfile{}).Error
}

// ADMIN USERS

// ListAdminUsers returns all admin grants with user and organization info
func (s *AdminService) ListAdminUsers() ([]AdminUserSummary, error) {
	var admins []model.AdminUser
	if err := s.db.Order("created_at DESC").Find(&admins).Error; err != nil {
		return nil, err
	}
	if len(admins) == 0 {
		return []AdminUserSummary{}, nil
	}

	orgNames, err := s.organizationNames()
	if err != nil {
		s.log.Error("Failed to fetch organization names", zap.Error(err))
	}

	userIDs := make([]string, len(admins))
	for i, a := range admins {
		userIDs[i] = a.UserID
	}
	emails := s.userEmails(userIDs)

	nameMap := map[string]string{}
	var profiles []model.UserProfile
	if err := s.db.Select("user_id", "first_name", "last_name").Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		s.log.Error("Failed to fetch profiles for admin users", zap.Error(err))
	} else {
		for _, p := range profiles {
			nameMap[p.UserID] = strings.TrimSpace(p.FirstName + " " + p.LastName)
		}
	}

	summaries := make([]AdminUserSummary, len(admins))
	for i, a := range admins {
		summary := AdminUserSummary{
			AdminUser:        a,
			UserEmail:        emails[a.UserID],
			UserName:         nameMap[a.UserID],
			OrganizationName: orgNames[a.OrganizationID],
		}
		if summary.UserEmail == "" {
			summary.UserEmail = placeholderEmail(a.UserID)
		}
		if summary.UserName == "" {
			summary.UserName = "Unknown User"
		}
		summaries[i] = summary
	}
	return summaries, nil
}

// CreateAdminUser grants admin permissions to a user. Capability flags
// default to true when not supplied.
func (s *AdminService) CreateAdminUser(userID, organizationID, adminLevel string, caps AdminCapabilities, grantedBy string) (*AdminUserSummary, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Message: "user_id is required"}
	}
	if organizationID == "" {
		return nil, &ValidationError{Field: "organization_id", Message: "organization_id is required"}
	}
	if adminLevel == "" {
		adminLevel = "admin"
	}

	admin := model.AdminUser{
		UserID:                 userID,
		OrganizationID:         organizationID,
		AdminLevel:             adminLevel,
		CanManageOrganizations: boolOrDefault(caps.CanManageOrganizations, true),
		CanManageProperties:    boolOrDefault(caps.CanManageProperties, true),
		CanManageUsers:         boolOrDefault(caps.CanManageUsers, true),
		CanViewAllData:         boolOrDefault(caps.CanViewAllData, true),
		IsActive:               true,
	}
	if grantedBy != "" {
		admin.GrantedBy = &grantedBy
	}
	if err := s.createWithActiveFallback("admin_users", &admin); err != nil {
		return nil, err
	}
	admin.IsActive = true

	summary := AdminUserSummary{AdminUser: admin}
	emails := s.userEmails([]string{userID})
	summary.UserEmail = emails[userID]
	if summary.UserEmail == "" {
		summary.UserEmail = placeholderEmail(userID)
	}
	var profile model.UserProfile
	if err := s.db.Select("first_name", "last_name").Where("user_id = ?", userID).First(&profile).Error; err == nil {
		summary.UserName = strings.TrimSpace(profile.FirstName + " " + profile.LastName)
	}
	if summary.UserName == "" {
		summary.UserName = "Unknown User"
	}
	var org model.Organization
	if err := s.db.Select("name").First(&org, "id = ?", organizationID).Error; err == nil {
		summary.OrganizationName = org.Name
	}
	return &summary, nil
}

// UpdateAdminUser updates an admin grant's level and capability flags
func (s *AdminService) UpdateAdminUser(id string, adminLevel string, caps AdminCapabilities) error {
	updates := map[string]interface{}{}
	if adminLevel != "" {
		updates["admin_level"] = adminLevel
	}
	if caps.CanManageOrganizations != nil {
		updates["can_manage_organizations"] = *caps.CanManageOrganizations
	}
	if caps.CanManageProperties != nil {
		updates["can_manage_properties"] = *caps.CanManageProperties
	}
	if caps.CanManageUsers != nil {
		updates["can_manage_users"] = *caps.CanManageUsers
	}
	if caps.CanViewAllData != nil {
		updates["can_view_all_data"] = *caps.CanViewAllData
	}
	if caps.IsActive != nil {
		updates["is_active"] = *caps.IsActive
	}
	return s.updateWithActiveFallback("admin_users", &model.AdminUser{}, id, updates)
}

// DeleteAdminUser revokes an admin grant
func (s *AdminService) DeleteAdminUser(id string) error {
	return s.db.Where("id = ?", id).Delete(&model.AdminUser{}).Error
}

// helpers

func (s *AdminService) groupCounts(modelPtr interface{}, column string) (map[string]int64, error) {
	type row struct {
		Key   string
		Count int64
	}
	var rows []row
	err := s.db.Model(modelPtr).
		Select(fmt.Sprintf("%s AS key, COUNT(*) AS count", column)).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return map[string]int64{}, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Key] = r.Count
	}
	return counts, nil
}

func (s *AdminService) organizationNames() (map[string]string, error) {
	var orgs []model.Organization
	err := s.db.Select("id", "name").Find(&orgs).Error
	if err != nil {
		return map[string]string{}, err
	}
	names := make(map[string]string, len(orgs))
	for _, o := range orgs {
		names[o.ID] = o.Name
	}
	return names, nil
}

func (s *AdminService) userEmails(userIDs []string) map[string]string {
	emails := make(map[string]string, len(userIDs))
	var users []model.User
	if err := s.db.Select("id", "email").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		s.log.Error("Failed to fetch user emails", zap.Error(err))
		return emails
	}
	for _, u := range users {
		emails[u.ID] = u.Email
	}
	return emails
}

func placeholderEmail(userID string) string {
	if len(userID) > 8 {
		userID = userID[:8]
	}
	return "user-" + userID
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
