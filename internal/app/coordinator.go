package app

import "github.com/avask/pulse/internal/directory"

// Coordinator aggregates the process-wide shared state the socket handlers
// operate on. It is constructed once at startup and passed by reference
// into each connection's handler set; tests build fresh instances for
// isolation.
type Coordinator struct {
	Registry  *Registry
	Rooms     *Rooms
	Voice     *VoiceStore
	Relay     *Relay
	Presence  *Presence
	Directory directory.Directory
}

func NewCoordinator(dir directory.Directory) *Coordinator {
	reg := NewRegistry()
	return &Coordinator{
		Registry:  reg,
		Rooms:     NewRooms(),
		Voice:     NewVoiceStore(),
		Relay:     NewRelay(reg),
		Presence:  NewPresence(dir, reg),
		Directory: dir,
	}
}
