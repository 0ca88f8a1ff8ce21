package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/onnwee/kick-profile/backend/kickapi"
)

// LiveStatus is the live-stream portion of the profile contract.
type LiveStatus struct {
	IsLive      bool    `json:"isLive"`
	IsMature    bool    `json:"isMature"`
	ViewerCount int     `json:"viewerCount"`
	StreamTitle string  `json:"streamTitle"`
	StartedAt   *string `json:"startedAt"`
}

// NormalizedProfile is the stable client-facing contract. Every key is always
// present in the JSON output; absent data is null, and booleans default to
// false rather than null.
type NormalizedProfile struct {
	Slug            string     `json:"slug"`
	Description     string     `json:"description"`
	BannerImage     string     `json:"bannerImage"`
	FollowerCount   *int64     `json:"followerCount"`
	CreatedAt       *string    `json:"createdAt"`
	AccountAgeDays  *int       `json:"accountAgeDays"`
	AccountAgeHuman *string    `json:"accountAgeHuman"`
	Verified        bool       `json:"verified"`
	Banned          bool       `json:"banned"`
	BroadcasterID   *int64     `json:"broadcasterId"`
	LiveStatus      LiveStatus `json:"liveStatus"`
}

// Normalize maps a raw channel record onto the profile contract. It is a pure
// function and never fails: whatever shape upstream returned degrades to
// defaults instead of erroring, so schema drift cannot crash the service.
// Legacy fields win over primary fields wherever both carry a value.
func Normalize(rec kickapi.Record, requestedSlug string, now time.Time) NormalizedProfile {
	p := rec.Primary
	l := rec.Legacy

	out := NormalizedProfile{
		Slug:       strings.TrimSpace(requestedSlug),
		LiveStatus: LiveStatus{},
	}

	if p != nil {
		if p.Slug != "" {
			out.Slug = p.Slug
		}
		out.Description = p.ChannelDescription
		out.BannerImage = p.BannerPicture
		if p.BroadcasterUserID > 0 {
			id := p.BroadcasterUserID
			out.BroadcasterID = &id
		}
		out.LiveStatus = LiveStatus{
			IsLive:      p.Stream.IsLive,
			IsMature:    p.Stream.IsMature,
			ViewerCount: p.Stream.ViewerCount,
			StreamTitle: p.StreamTitle,
			StartedAt:   formatTimestamp(p.Stream.StartTime),
		}
	}

	if l != nil {
		if l.Slug != "" {
			out.Slug = l.Slug
		}
		if l.User != nil && l.User.Bio != "" {
			out.Description = l.User.Bio
		}
		if l.BannerImage != nil && l.BannerImage.URL != "" {
			out.BannerImage = l.BannerImage.URL
		}
		if out.BroadcasterID == nil && l.UserID > 0 {
			id := l.UserID
			out.BroadcasterID = &id
		}
		if l.FollowersCount != nil {
			n := *l.FollowersCount
			out.FollowerCount = &n
		}
		// Verification comes from the explicit flag and nothing else; category
		// or live state must never be allowed to imply it.
		out.Verified = bool(l.Verified)
		out.Banned = l.IsBanned
		if l.Livestream != nil {
			out.LiveStatus = LiveStatus{
				IsLive:      l.Livestream.IsLive,
				IsMature:    l.Livestream.IsMature,
				ViewerCount: l.Livestream.ViewerCount,
				StreamTitle: l.Livestream.SessionTitle,
				StartedAt:   formatTimestamp(l.Livestream.CreatedAt),
			}
		}
	}

	if created := createdAt(rec); created != nil && !created.After(now) {
		s := created.UTC().Format(time.RFC3339)
		out.CreatedAt = &s
		days, human := accountAge(*created, now)
		out.AccountAgeDays = &days
		out.AccountAgeHuman = &human
	}

	return out
}

// createdAt picks the first non-sentinel timestamp among the known candidate
// fields: the legacy channel creation date, the legacy chatroom creation date,
// and finally the live-stream start time as a proxy.
func createdAt(rec kickapi.Record) *time.Time {
	candidates := make([]string, 0, 4)
	if l := rec.Legacy; l != nil {
		candidates = append(candidates, l.CreatedAt)
		if l.Chatroom != nil {
			candidates = append(candidates, l.Chatroom.CreatedAt)
		}
		if l.Livestream != nil {
			candidates = append(candidates, l.Livestream.CreatedAt)
		}
	}
	if p := rec.Primary; p != nil {
		candidates = append(candidates, p.Stream.StartTime)
	}
	for _, c := range candidates {
		if t := parseTimestamp(c); t != nil {
			return t
		}
	}
	return nil
}

// timestampLayouts covers the formats the two upstream APIs have used.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses an upstream timestamp, returning nil for empty,
// malformed, and sentinel values. Kick uses the zero date 0001-01-01 to mean
// "unset"; that must read as absent, not as a date in the year one.
func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.IsZero() || t.Year() <= 1 {
			return nil
		}
		return &t
	}
	return nil
}

// formatTimestamp re-renders an upstream timestamp as RFC3339, or nil when it
// is absent, malformed, or the sentinel.
func formatTimestamp(s string) *string {
	t := parseTimestamp(s)
	if t == nil {
		return nil
	}
	out := t.UTC().Format(time.RFC3339)
	return &out
}

// accountAge computes the whole-day difference and a human description using
// calendar month/year arithmetic, flooring at each unit boundary. Fixed
// 30/365-day buckets would drift on long-lived accounts.
func accountAge(created, now time.Time) (int, string) {
	days := int(now.Sub(created).Hours() / 24)

	years := now.Year() - created.Year()
	months := int(now.Month()) - int(created.Month())
	if now.Day() < created.Day() {
		months--
	}
	if months < 0 {
		years--
		months += 12
	}

	var human string
	switch {
	case years > 0 && months > 0:
		human = fmt.Sprintf("%d %s, %d %s", years, pluralize(years, "year"), months, pluralize(months, "month"))
	case years > 0:
		human = fmt.Sprintf("%d %s", years, pluralize(years, "year"))
	default:
		human = fmt.Sprintf("%d %s", months, pluralize(months, "month"))
	}
	return days, human
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
