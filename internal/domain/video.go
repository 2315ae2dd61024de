package domain

import "regexp"

var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID pulls the 11 character video id out of a watch or share link.
func ExtractVideoID(link string) string {
	match := videoIDPattern.FindStringSubmatch(link)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// ThumbnailURL is the full size preview image of a video, empty when the link has no id.
func ThumbnailURL(link string) string {
	id := ExtractVideoID(link)
	if id == "" {
		return ""
	}
	return "https://img.youtube.com/vi/" + id + "/maxresdefault.jpg"
}
