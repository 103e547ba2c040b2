package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// VideoOwner is the slice of the owning user embedded in video responses.
type VideoOwner struct {
	ID       string    `json:"_id"`
	Username string    `json:"username,omitempty"`
	FullName string    `json:"fullName,omitempty"`
	Avatar   *MediaRef `json:"avatar,omitempty"`
}

// Video is the metadata record of an uploaded video. The binary and the
// thumbnail live on the media host; only their references are stored.
type Video struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VideoFile   MediaRef   `json:"videoFile"`
	Thumbnail   MediaRef   `json:"thumbnail"`
	Duration    float64    `json:"duration"`
	Views       int64      `json:"views"`
	Likes       int64      `json:"likes"`
	Shares      int64      `json:"shares"`
	IsPublished bool       `json:"isPublished"`
	Owner       VideoOwner `json:"owner"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// VisibleTo reports whether userID may see the video. Unpublished videos
// are only visible to their owner.
func (v *Video) VisibleTo(userID string) bool {
	return v.IsPublished || (userID != "" && v.Owner.ID == userID)
}

// VideoPage is one page of a video listing.
type VideoPage struct {
	Videos      []*Video
	Total       int64
	CurrentPage int
	TotalPages  int
}

// Share platforms accepted by ShareLinks. Anything else yields every link.
const (
	PlatformGeneral  = "general"
	PlatformFacebook = "facebook"
	PlatformTwitter  = "twitter"
	PlatformWhatsApp = "whatsapp"
	PlatformLinkedIn = "linkedin"
	PlatformTelegram = "telegram"
	PlatformReddit   = "reddit"
)

var sharePlatforms = []string{
	PlatformFacebook, PlatformTwitter, PlatformWhatsApp,
	PlatformLinkedIn, PlatformTelegram, PlatformReddit,
}

// NormalizePlatform maps platform to one of the known share platforms,
// falling back to PlatformGeneral.
func NormalizePlatform(platform string) string {
	platform = strings.ToLower(strings.TrimSpace(platform))
	for _, p := range sharePlatforms {
		if platform == p {
			return p
		}
	}
	return PlatformGeneral
}

// ShareLinks returns the direct link to videoURL plus the share intent for
// platform. The general platform returns every intent.
func ShareLinks(videoURL, title, platform string) map[string]string {
	links := map[string]string{
		"direct":    videoURL,
		"clipboard": videoURL,
	}

	if p := NormalizePlatform(platform); p != PlatformGeneral {
		links[p] = shareIntent(p, videoURL, title)
		return links
	}
	for _, p := range sharePlatforms {
		links[p] = shareIntent(p, videoURL, title)
	}
	return links
}

func shareIntent(platform, videoURL, title string) string {
	u := url.QueryEscape(videoURL)
	t := url.QueryEscape(title)
	switch platform {
	case PlatformFacebook:
		return "https://www.facebook.com/sharer/sharer.php?u=" + u
	case PlatformTwitter:
		return fmt.Sprintf("https://twitter.com/intent/tweet?url=%s&text=%s", u, t)
	case PlatformWhatsApp:
		return "https://api.whatsapp.com/send?text=" + url.QueryEscape(title+" "+videoURL)
	case PlatformLinkedIn:
		return "https://www.linkedin.com/sharing/share-offsite/?url=" + u
	case PlatformTelegram:
		return fmt.Sprintf("https://t.me/share/url?url=%s&text=%s", u, t)
	case PlatformReddit:
		return fmt.Sprintf("https://reddit.com/submit?url=%s&title=%s", u, t)
	}
	return ""
}
