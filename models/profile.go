// models/profile.go
package models

// Community status values a profile can carry.
const (
	CommunityStatusRecruit = "recruit"
	CommunityStatusPending = "pending"
	CommunityStatusMember  = "member"
)

// Profile is the local identity of the device's commander. The ID is the durable
// join key against the remote mesh and never changes after creation.
type Profile struct {
	Username        string `json:"username"`
	Avatar          string `json:"avatar"`
	ID              string `json:"id"`
	CommunityStatus string `json:"communityStatus"`
}

// ProfilePatch carries the fields of an explicit profile edit. Nil fields are left alone.
type ProfilePatch struct {
	Username        *string `json:"username,omitempty"`
	Avatar          *string `json:"avatar,omitempty"`
	CommunityStatus *string `json:"communityStatus,omitempty"`
}

// Apply returns p with the patch merged in.
func (patch ProfilePatch) Apply(p Profile) Profile {
	if patch.Username != nil {
		p.Username = *patch.Username
	}
	if patch.Avatar != nil {
		p.Avatar = *patch.Avatar
	}
	if patch.CommunityStatus != nil {
		p.CommunityStatus = *patch.CommunityStatus
	}
	return p
}

func (patch ProfilePatch) Empty() bool {
	return patch.Username == nil && patch.Avatar == nil && patch.CommunityStatus == nil
}
