package handlers

// Request bodies, one per endpoint that takes JSON.

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=32"`
	Password    string `json:"password" binding:"required,min=6,max=72"`
	Email       string `json:"email" binding:"omitempty,email"`
	DisplayName string `json:"display_name" binding:"max=64"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileRequest leaves fields that are absent untouched. An empty email
// clears it, anything else must pass the same rule as RegisterRequest.Email.
type ProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=64"`
	Bio         *string `json:"bio" binding:"omitempty,max=200"`
	Email       *string `json:"email" binding:"omitempty,email|eq="`
}

type PasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// NotificationSettingsRequest lists every accepted key. Absent keys keep
// their stored value.
type NotificationSettingsRequest struct {
	NotifyReplies *bool `json:"notify_replies"`
	NotifyVotes   *bool `json:"notify_votes"`
	EmailReplies  *bool `json:"email_replies"`
}

type BookmarkRequest struct {
	BookID uint    `json:"book_id" binding:"required"`
	Page   *int    `json:"page" binding:"omitempty,min=1"`
	Note   *string `json:"note" binding:"omitempty,max=500"`
}

type AddCommentRequest struct {
	BookID   uint   `json:"book_id" binding:"required"`
	Text     string `json:"text" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

type EditCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type VoteRequest struct {
	Value int `json:"value" binding:"required,oneof=1 -1"`
}

type BookRequest struct {
	DriveID         string `json:"drive_id" binding:"required,max=128"`
	Title           string `json:"title" binding:"required"`
	ExternalStoryID string `json:"external_story_id" binding:"max=64"`
}
