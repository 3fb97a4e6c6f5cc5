package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Validation rejections happen before the service touches the database, so
// these cases run against a service with no connection at all.
func newValidationOnlyService() *AdminService {
	return NewAdminService(nil, zap.NewNop())
}

func TestCreateOrganization_RequiresName(t *testing.T) {
	svc := newValidationOnlyService()

	_, err := svc.CreateOrganization("   ")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.Equal(t, "name is required", verr.Message)
}

func TestUpdateOrganization_RequiresName(t *testing.T) {
	svc := newValidationOnlyService()

	err := svc.UpdateOrganization("org-1", "", nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestCreateProperty_Validation(t *testing.T) {
	svc := newValidationOnlyService()

	_, err := svc.CreateProperty("", "Maple Court", nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "organization_id", verr.Field)

	_, err = svc.CreateProperty("org-1", "  ", nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestCreateUserProfile_Validation(t *testing.T) {
	svc := newValidationOnlyService()

	_, err := svc.CreateUserProfile("", "org-1", "Jordan", "Lee")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user_id", verr.Field)

	_, err = svc.CreateUserProfile("user-1", "", "Jordan", "Lee")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "organization_id", verr.Field)
}

func TestCreateAdminUser_Validation(t *testing.T) {
	svc := newValidationOnlyService()

	_, err := svc.CreateAdminUser("", "org-1", "admin", AdminCapabilities{}, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user_id", verr.Field)

	_, err = svc.CreateAdminUser("user-1", "", "admin", AdminCapabilities{}, "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "organization_id", verr.Field)
}

func TestValidationError_MessageIsTheErrorString(t *testing.T) {
	err := &ValidationError{Field: "name", Message: "name is required"}
	assert.Equal(t, "name is required", err.Error())
}

func TestPlaceholderEmail(t *testing.T) {
	assert.Equal(t, "user-1b9d6bcd", placeholderEmail("1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"))
	assert.Equal(t, "user-abc", placeholderEmail("abc"))
}

func TestBoolOrDefault(t *testing.T) {
	f := false
	assert.False(t, boolOrDefault(&f, true))
	assert.True(t, boolOrDefault(nil, true))
	assert.False(t, boolOrDefault(nil, false))
}
