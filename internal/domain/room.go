package domain

// RoomKey identifies a runtime broadcast scope. Rooms are never persisted:
// they exist while at least one connection is subscribed.
type RoomKey string

// ServerRoom scopes events to every connection browsing a community server.
func ServerRoom(serverID string) RoomKey { return RoomKey("server:" + serverID) }

// ChannelRoom scopes events to the text channel a connection is viewing.
// A connection occupies at most one channel room at a time.
func ChannelRoom(channelID string) RoomKey { return RoomKey("channel:" + channelID) }

// VoiceRoom scopes events to the participants of one voice channel.
// A connection occupies at most one voice room at a time.
func VoiceRoom(channelID string) RoomKey { return RoomKey("voice:" + channelID) }

// GroupRoom scopes events to the members of a group DM.
func GroupRoom(groupID string) RoomKey { return RoomKey("group:" + groupID) }

// ThreadRoom scopes events to the followers of a message thread.
func ThreadRoom(threadID string) RoomKey { return RoomKey("thread:" + threadID) }
