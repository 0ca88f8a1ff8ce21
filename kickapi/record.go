package kickapi

import "encoding/json"

// Source identifies which upstream shape(s) a Record carries.
type Source int

const (
	// SourcePrimary means only the public v1 API answered.
	SourcePrimary Source = iota
	// SourceLegacy means only the legacy website API answered.
	SourceLegacy
	// SourceMerged means both answered; legacy fields take precedence on
	// overlap at normalization time.
	SourceMerged
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceLegacy:
		return "legacy"
	case SourceMerged:
		return "merged"
	default:
		return "unknown"
	}
}

// Record is the raw channel data handed to the normalizer. It is a tagged
// union of the upstream shapes rather than a structural merge: either pointer
// may be nil, and interpretation (field precedence, defaults, sentinel
// timestamps) is deferred entirely to the normalizer.
type Record struct {
	Source  Source
	Primary *PrimaryChannel
	Legacy  *LegacyChannel
}

// PrimaryChannel mirrors one entry of the public v1 channels response. The
// v1 shape carries live-stream state but no follower count, verification
// flag, or creation date.
type PrimaryChannel struct {
	BannerPicture     string `json:"banner_picture"`
	BroadcasterUserID int64  `json:"broadcaster_user_id"`
	Category          struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"category"`
	ChannelDescription string `json:"channel_description"`
	Slug               string `json:"slug"`
	Stream             struct {
		IsLive      bool   `json:"is_live"`
		IsMature    bool   `json:"is_mature"`
		Language    string `json:"language"`
		StartTime   string `json:"start_time"`
		Thumbnail   string `json:"thumbnail"`
		ViewerCount int    `json:"viewer_count"`
	} `json:"stream"`
	StreamTitle string `json:"stream_title"`
}

// LegacyChannel mirrors the v2 website API. That shape drifted across API
// revisions, so optional sub-objects are pointers and Verified tolerates the
// encodings observed in the wild.
type LegacyChannel struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	Slug           string       `json:"slug"`
	IsBanned       bool         `json:"is_banned"`
	FollowersCount *int64       `json:"followers_count"`
	Verified       VerifiedFlag `json:"verified"`
	CreatedAt      string       `json:"created_at"`
	BannerImage    *struct {
		URL string `json:"url"`
	} `json:"banner_image"`
	Chatroom *struct {
		CreatedAt string `json:"created_at"`
	} `json:"chatroom"`
	Livestream *struct {
		SessionTitle string `json:"session_title"`
		IsLive       bool   `json:"is_live"`
		IsMature     bool   `json:"is_mature"`
		ViewerCount  int    `json:"viewer_count"`
		CreatedAt    string `json:"created_at"`
	} `json:"livestream"`
	User *struct {
		Username   string `json:"username"`
		Bio        string `json:"bio"`
		ProfilePic string `json:"profile_pic"`
	} `json:"user"`
}

// VerifiedFlag decodes the legacy verified field, which has been a boolean,
// null, or a verification record object depending on API revision. A present
// object counts as verified; null and false do not.
type VerifiedFlag bool

func (v *VerifiedFlag) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "true":
		*v = true
		return nil
	case "false", "null", "":
		*v = false
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err == nil {
		*v = VerifiedFlag(len(obj) > 0)
		return nil
	}
	// Unrecognized scalar (e.g. a number); treat as unverified rather than
	// failing the whole decode.
	*v = false
	return nil
}

func (v VerifiedFlag) MarshalJSON() ([]byte, error) {
	if v {
		return []byte("true"), nil
	}
	return []byte("false"), nil
}
