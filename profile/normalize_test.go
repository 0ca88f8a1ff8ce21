package profile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/onnwee/kick-profile/backend/kickapi"
)

func legacyFromJSON(t *testing.T, body string) *kickapi.LegacyChannel {
	t.Helper()
	var ch kickapi.LegacyChannel
	if err := json.Unmarshal([]byte(body), &ch); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return &ch
}

func primaryFromJSON(t *testing.T, body string) *kickapi.PrimaryChannel {
	t.Helper()
	var ch kickapi.PrimaryChannel
	if err := json.Unmarshal([]byte(body), &ch); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return &ch
}

func TestNormalize_CompleteMergedRecord(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rec := kickapi.Record{
		Source: kickapi.SourceMerged,
		Primary: primaryFromJSON(t, `{
			"slug": "examplechannel",
			"broadcaster_user_id": 12345,
			"channel_description": "primary description",
			"banner_picture": "https://img.example/banner-v1.jpg",
			"stream": {"is_live": false},
			"stream_title": ""
		}`),
		Legacy: legacyFromJSON(t, `{
			"slug": "examplechannel",
			"created_at": "2022-01-15T00:00:00Z",
			"followers_count": 500,
			"verified": true
		}`),
	}

	got := Normalize(rec, "examplechannel", now)

	if got.Slug != "examplechannel" {
		t.Errorf("Slug = %q, want examplechannel", got.Slug)
	}
	if got.FollowerCount == nil || *got.FollowerCount != 500 {
		t.Errorf("FollowerCount = %v, want 500", got.FollowerCount)
	}
	if got.CreatedAt == nil || *got.CreatedAt != "2022-01-15T00:00:00Z" {
		t.Errorf("CreatedAt = %v, want 2022-01-15T00:00:00Z", got.CreatedAt)
	}
	if got.AccountAgeDays == nil || *got.AccountAgeDays != 730 {
		t.Errorf("AccountAgeDays = %v, want 730", got.AccountAgeDays)
	}
	if got.AccountAgeHuman == nil || *got.AccountAgeHuman != "2 years" {
		t.Errorf("AccountAgeHuman = %v, want 2 years", got.AccountAgeHuman)
	}
	if !got.Verified {
		t.Error("Verified = false, want true")
	}
	if got.Banned {
		t.Error("Banned = true, want false")
	}
	if got.BroadcasterID == nil || *got.BroadcasterID != 12345 {
		t.Errorf("BroadcasterID = %v, want 12345", got.BroadcasterID)
	}
}

func TestNormalize_SentinelCreatedAt(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rec := kickapi.Record{
		Source: kickapi.SourceLegacy,
		Legacy: legacyFromJSON(t, `{
			"slug": "examplechannel",
			"created_at": "0001-01-01T00:00:00Z"
		}`),
	}

	got := Normalize(rec, "examplechannel", now)

	if got.CreatedAt != nil {
		t.Errorf("CreatedAt = %v, want nil for sentinel date", *got.CreatedAt)
	}
	if got.AccountAgeDays != nil {
		t.Errorf("AccountAgeDays = %v, want nil — a sentinel must not fabricate a multi-century age", *got.AccountAgeDays)
	}
	if got.AccountAgeHuman != nil {
		t.Errorf("AccountAgeHuman = %v, want nil", *got.AccountAgeHuman)
	}
}

func TestNormalize_CreatedAtCandidateOrder(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		legacy string
		want   string
	}{
		{
			name:   "explicit created_at wins",
			legacy: `{"created_at": "2022-01-15T00:00:00Z", "chatroom": {"created_at": "2023-01-01T00:00:00Z"}}`,
			want:   "2022-01-15T00:00:00Z",
		},
		{
			name:   "chatroom date when channel date is sentinel",
			legacy: `{"created_at": "0001-01-01T00:00:00Z", "chatroom": {"created_at": "2023-01-01T00:00:00Z"}}`,
			want:   "2023-01-01T00:00:00Z",
		},
		{
			name:   "stream start as last-resort proxy",
			legacy: `{"livestream": {"created_at": "2024-05-30T12:00:00Z"}}`,
			want:   "2024-05-30T12:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := kickapi.Record{Source: kickapi.SourceLegacy, Legacy: legacyFromJSON(t, tt.legacy)}
			got := Normalize(rec, "examplechannel", now)
			if got.CreatedAt == nil || *got.CreatedAt != tt.want {
				t.Errorf("CreatedAt = %v, want %s", got.CreatedAt, tt.want)
			}
		})
	}
}

func TestNormalize_VerifiedOnlyFromExplicitFlag(t *testing.T) {
	// Regression guard: a "Verified" category name or live state must never
	// flip the verified flag.
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rec := kickapi.Record{
		Source: kickapi.SourceMerged,
		Primary: primaryFromJSON(t, `{
			"slug": "examplechannel",
			"category": {"id": 1, "name": "Verified Legends"},
			"stream": {"is_live": true, "viewer_count": 90000}
		}`),
		Legacy: legacyFromJSON(t, `{"slug": "examplechannel", "verified": false}`),
	}

	got := Normalize(rec, "examplechannel", now)
	if got.Verified {
		t.Error("Verified = true without an explicit verification flag")
	}
}

func TestNormalize_FollowerCountNeverFromViewerCount(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rec := kickapi.Record{
		Source: kickapi.SourcePrimary,
		Primary: primaryFromJSON(t, `{
			"slug": "examplechannel",
			"stream": {"is_live": true, "viewer_count": 4321}
		}`),
	}

	got := Normalize(rec, "examplechannel", now)
	if got.FollowerCount != nil {
		t.Errorf("FollowerCount = %v, want nil when genuinely unavailable", *got.FollowerCount)
	}
	if got.LiveStatus.ViewerCount != 4321 {
		t.Errorf("LiveStatus.ViewerCount = %d, want 4321", got.LiveStatus.ViewerCount)
	}
}

func TestNormalize_LegacyPrecedenceOnOverlap(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rec := kickapi.Record{
		Source: kickapi.SourceMerged,
		Primary: primaryFromJSON(t, `{
			"slug": "examplechannel",
			"channel_description": "primary description",
			"banner_picture": "https://img.example/banner-v1.jpg",
			"stream": {"is_live": false},
			"stream_title": "old title"
		}`),
		Legacy: legacyFromJSON(t, `{
			"slug": "examplechannel",
			"banner_image": {"url": "https://img.example/banner-v2.jpg"},
			"user": {"bio": "legacy bio"},
			"livestream": {"session_title": "live title", "is_live": true, "viewer_count": 12}
		}`),
	}

	got := Normalize(rec, "examplechannel", now)
	if got.Description != "legacy bio" {
		t.Errorf("Description = %q, want legacy bio", got.Description)
	}
	if got.BannerImage != "https://img.example/banner-v2.jpg" {
		t.Errorf("BannerImage = %q, want legacy banner", got.BannerImage)
	}
	if !got.LiveStatus.IsLive || got.LiveStatus.StreamTitle != "live title" {
		t.Errorf("LiveStatus = %+v, want legacy livestream fields", got.LiveStatus)
	}
}

func TestNormalize_EmptyRecordDegradesToDefaults(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	got := Normalize(kickapi.Record{}, "requestedslug", now)

	if got.Slug != "requestedslug" {
		t.Errorf("Slug = %q, want the requested identifier echoed back", got.Slug)
	}
	if got.Verified || got.Banned {
		t.Error("booleans must default to false")
	}
	if got.FollowerCount != nil || got.CreatedAt != nil || got.AccountAgeDays != nil || got.BroadcasterID != nil {
		t.Error("nullable fields must default to nil")
	}
}

func TestNormalize_EveryKeyPresentInJSON(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	got := Normalize(kickapi.Record{}, "examplechannel", now)

	b, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{
		"slug", "description", "bannerImage", "followerCount", "createdAt",
		"accountAgeDays", "accountAgeHuman", "verified", "banned",
		"broadcasterId", "liveStatus",
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("output JSON missing key %q", key)
		}
	}

	var live map[string]json.RawMessage
	if err := json.Unmarshal(m["liveStatus"], &live); err != nil {
		t.Fatalf("Unmarshal(liveStatus) error = %v", err)
	}
	for _, key := range []string{"isLive", "isMature", "viewerCount", "streamTitle", "startedAt"} {
		if _, ok := live[key]; !ok {
			t.Errorf("liveStatus JSON missing key %q", key)
		}
	}
}

func TestAccountAge(t *testing.T) {
	tests := []struct {
		name      string
		created   string
		now       string
		wantDays  int
		wantHuman string
	}{
		{name: "exactly two years", created: "2022-01-15T00:00:00Z", now: "2024-01-15T00:00:00Z", wantDays: 730, wantHuman: "2 years"},
		{name: "years and months", created: "2021-03-10T00:00:00Z", now: "2024-06-20T00:00:00Z", wantDays: 1198, wantHuman: "3 years, 3 months"},
		{name: "under one year", created: "2024-01-01T00:00:00Z", now: "2024-06-15T00:00:00Z", wantDays: 166, wantHuman: "5 months"},
		{name: "singular units", created: "2023-01-10T00:00:00Z", now: "2024-02-11T00:00:00Z", wantDays: 397, wantHuman: "1 year, 1 month"},
		{name: "brand new account", created: "2024-01-10T00:00:00Z", now: "2024-01-15T00:00:00Z", wantDays: 5, wantHuman: "0 months"},
		{name: "floor at month boundary", created: "2022-01-31T00:00:00Z", now: "2022-03-30T00:00:00Z", wantDays: 58, wantHuman: "1 month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, _ := time.Parse(time.RFC3339, tt.created)
			now, _ := time.Parse(time.RFC3339, tt.now)
			days, human := accountAge(created, now)
			if days != tt.wantDays {
				t.Errorf("days = %d, want %d", days, tt.wantDays)
			}
			if human != tt.wantHuman {
				t.Errorf("human = %q, want %q", human, tt.wantHuman)
			}
		})
	}
}

func TestAccountAge_MonotonicAcrossMonths(t *testing.T) {
	created := time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC)
	now := time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC)

	prevDays := -1
	for i := 0; i < 48; i++ {
		days, _ := accountAge(created, now)
		if days < prevDays {
			t.Fatalf("accountAge not monotonic: %d days after %d at %v", days, prevDays, now)
		}
		prevDays = days
		now = now.AddDate(0, 1, 0)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantNil bool
	}{
		{name: "rfc3339", in: "2022-01-15T00:00:00Z"},
		{name: "legacy space-separated", in: "2022-01-15 10:30:00"},
		{name: "empty", in: "", wantNil: true},
		{name: "whitespace", in: "   ", wantNil: true},
		{name: "sentinel zero date", in: "0001-01-01T00:00:00Z", wantNil: true},
		{name: "garbage", in: "not-a-date", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.in)
			if tt.wantNil && got != nil {
				t.Errorf("parseTimestamp(%q) = %v, want nil", tt.in, got)
			}
			if !tt.wantNil && got == nil {
				t.Errorf("parseTimestamp(%q) = nil, want value", tt.in)
			}
		})
	}
}
