package dto

// BootstrapRequest selects the role of the calling account.
type BootstrapRequest struct {
	Role string `json:"role"`
}

// BootstrapResponse describes the bootstrapped account.
type BootstrapResponse struct {
	FirebaseUID      string `json:"firebase_uid"`
	Role             string `json:"role"`
	ProfileCompleted bool   `json:"profile_completed"`
	IsNewUser        bool   `json:"is_new_user"`
}

// CompleteProfileRequest sets the registration number and department.
type CompleteProfileRequest struct {
	ExternalID string  `json:"external_id" validate:"required,max=100"`
	Department string  `json:"department" validate:"required,max=120"`
	Name       *string `json:"name,omitempty" validate:"omitempty,max=200"`
}

// CompleteProfileResponse acknowledges profile completion.
type CompleteProfileResponse struct {
	OK               bool `json:"ok"`
	ProfileCompleted bool `json:"profile_completed"`
}

// UpdateProfileRequest carries optional profile fields; blank values are ignored.
type UpdateProfileRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=200"`
	ExternalID *string `json:"external_id,omitempty" validate:"omitempty,max=100"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=120"`
}

// ProfileResponse is the public projection of a user.
type ProfileResponse struct {
	FirebaseUID      string  `json:"firebase_uid"`
	Email            *string `json:"email"`
	Name             *string `json:"name"`
	Role             string  `json:"role"`
	ExternalID       *string `json:"external_id"`
	Department       *string `json:"department"`
	ProfileCompleted bool    `json:"profile_completed"`
}

// ProfileInfoResponse adds role record details to the profile.
type ProfileInfoResponse struct {
	UserID string `json:"user_id"`
	ProfileResponse
	RoleRecordExists bool                   `json:"role_record_exists"`
	RoleInfo         map[string]interface{} `json:"role_info"`
}
