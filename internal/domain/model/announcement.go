package model

// AnnouncementChannel says where a broadcast should be delivered.
type AnnouncementChannel string

const (
	AnnouncementEmail AnnouncementChannel = "email"
	AnnouncementInApp AnnouncementChannel = "in_app"
	AnnouncementBoth  AnnouncementChannel = "both"
)

// TargetRole selects the audience of a broadcast.
type TargetRole string

const (
	TargetAll     TargetRole = "all"
	TargetArtist  TargetRole = "artist"
	TargetCurator TargetRole = "curator"
)

// Announcement is the input to broadcast fan-out.
// Message may contain {{name}} / {{username}} placeholders and raw markup.
type Announcement struct {
	ID         string
	Subject    string
	Message    string
	Channel    AnnouncementChannel
	TargetRole TargetRole
}

// WantsEmail reports whether the announcement should be emailed at all.
// In-app delivery is handled by the UI reading the announcement row.
func (a *Announcement) WantsEmail() bool {
	return a.Channel != AnnouncementInApp
}

// Targets reports whether an account with the given role is in the audience.
// Accounts without a role are only reached by "all".
func (a *Announcement) Targets(role Role) bool {
	switch a.TargetRole {
	case TargetAll, "":
		return true
	default:
		return role != "" && string(role) == string(a.TargetRole)
	}
}
