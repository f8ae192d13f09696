package domain

import "strings"

// PublishChannel enumerates the destinations an article can be published to.
type PublishChannel string

const (
	ChannelSite       PublishChannel = "site"
	ChannelBroadcast  PublishChannel = "broadcast"
	ChannelNewsletter PublishChannel = "newsletter"
)

// ParsePublishChannel coerces a raw string into a known channel.
func ParsePublishChannel(input string) (PublishChannel, bool) {
	channel := PublishChannel(strings.ToLower(strings.TrimSpace(input)))
	switch channel {
	case ChannelSite, ChannelBroadcast, ChannelNewsletter:
		return channel, true
	}
	return "", false
}
