package services

import (
	"context"
	"errors"
	"fmt"
)

// DeliveryResult is what a provider reports back for a single message.
type DeliveryResult struct {
	Success    bool   `json:"success"`
	ProviderID string `json:"provider_id,omitempty"`
	Simulated  bool   `json:"simulated,omitempty"`
}

// ReminderContext carries the values a reminder template needs.
type ReminderContext struct {
	UserName string
	RoomName string
	RoomCode string
}

type EmailSender interface {
	Send(ctx context.Context, to string, data ReminderContext) (DeliveryResult, error)
}

type SmsSender interface {
	Send(ctx context.Context, to, text string) (DeliveryResult, error)
}

// EventPublisher pushes scheduler events to clients watching a room.
type EventPublisher interface {
	Publish(roomID uint, event string, data interface{})
}

const (
	defaultRoomName = "General"
	defaultRoomCode = "N/A"
)

var ErrNoContact = errors.New("recipient has no contact for this channel")

func FormatReminderSMS(data ReminderContext, appURL string) string {
	return fmt.Sprintf("Hi %s! It's time to take your photo in room \"%s\". Code: %s. Go to: %s",
		data.UserName, data.RoomName, data.RoomCode, appURL)
}

func FormatWelcomeSMS(userName string) string {
	return fmt.Sprintf("Hi %s! Welcome to Photobooth 🎉 Create a room, invite your friends and take a photo together every hour!", userName)
}

func reminderEmailMessage(roomName string) string {
	return fmt.Sprintf("📸 It's time to take your photo in room %s!", roomName)
}

func reminderSMSMessage(roomName, roomCode string) string {
	return fmt.Sprintf("Photo time! Room: %s, Code: %s", roomName, roomCode)
}
