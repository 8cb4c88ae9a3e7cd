// utils/fcm.go
package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/repositories"
)

const fcmChannelID = "project_management_fcm_channel"

// FCMSender delivers push notifications through Firebase Cloud Messaging.
// A nil firebase app turns every send into a logged no-op so the rest of
// the system keeps working without push credentials.
type FCMSender struct {
	app   *firebase.App
	users *repositories.UserRepository
}

func NewFCMSender(app *firebase.App, users *repositories.UserRepository) *FCMSender {
	return &FCMSender{app: app, users: users}
}

// SendPush sends a push notification to the user's registered device.
func (s *FCMSender) SendPush(ctx context.Context, userID primitive.ObjectID, title, message string, data map[string]string) error {
	if s.app == nil {
		log.Printf("Firebase app is not initialized, skipping push for user %s", userID.Hex())
		return nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || user.FCMToken == "" {
		log.Printf("User %s has no FCM token", userID.Hex())
		return nil
	}

	client, err := s.app.Messaging(ctx)
	if err != nil {
		log.Printf("Error getting messaging client: %v", err)
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	notificationData := map[string]string{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for key, value := range data {
		notificationData[key] = value
	}

	fcmMessage := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: notificationData,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: fcmChannelID,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  message,
					},
					Sound: "default",
					Badge: func() *int { v := 1; return &v }(),
				},
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		log.Printf("Error sending FCM notification to user: %v", err)
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}

	log.Printf("FCM notification sent successfully to user %s: %s", userID.Hex(), response)
	return nil
}
