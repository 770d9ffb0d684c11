package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("u1", "ann")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.Status != StatusOffline {
		t.Errorf("new user status = %q, want offline", u.Status)
	}

	if _, err := NewUser("u1", ""); !errors.Is(err, ErrUsernameEmpty) {
		t.Errorf("empty username: err = %v", err)
	}
	if _, err := NewUser("u1", strings.Repeat("x", MaxUsernameLen+1)); !errors.Is(err, ErrUsernameTooLong) {
		t.Errorf("long username: err = %v", err)
	}
}

func TestSetUsername(t *testing.T) {
	u := &User{ID: "u1", Username: "ann"}
	if err := u.SetUsername(""); !errors.Is(err, ErrUsernameEmpty) {
		t.Errorf("err = %v, want ErrUsernameEmpty", err)
	}
	if u.Username != "ann" {
		t.Error("failed rename mutated the user")
	}
	if err := u.SetUsername("ben"); err != nil || u.Username != "ben" {
		t.Errorf("rename: err=%v username=%q", err, u.Username)
	}
}

func TestRoomKeys(t *testing.T) {
	cases := []struct {
		got  RoomKey
		want string
	}{
		{ServerRoom("s1"), "server:s1"},
		{ChannelRoom("c1"), "channel:c1"},
		{VoiceRoom("v1"), "voice:v1"},
		{GroupRoom("g1"), "group:g1"},
		{ThreadRoom("t1"), "thread:t1"},
	}
	for _, c := range cases {
		if string(c.got) != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}
}
