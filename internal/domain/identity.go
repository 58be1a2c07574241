package domain

// Role is the identity attribute gating start/end-stream actions.
type Role string

const (
	RoleViewer      Role = "viewer"
	RoleBroadcaster Role = "broadcaster"
)

// DefaultAvatar is used when a token carries no avatar.
const DefaultAvatar = "https://cdn.wavecast.io/avatars/default.png"

// Identity is the verified user attached to a connection at handshake time.
// It is immutable for the connection's lifetime.
type Identity struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	Avatar      string `json:"avatar"`
}

// CanBroadcast reports whether this identity may start or end streams.
func (i Identity) CanBroadcast() bool {
	return i.Role == RoleBroadcaster
}

// Public returns the identity fields safe to relay to other clients.
func (i Identity) Public() PublicIdentity {
	return PublicIdentity{
		UserID:      i.UserID,
		Username:    i.Username,
		DisplayName: i.DisplayName,
		Avatar:      i.Avatar,
	}
}

// PublicIdentity is the identity view shared with other connections.
type PublicIdentity struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}
