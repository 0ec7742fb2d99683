package postgresadapter

import (
	"time"

	"beacon/contexts/delivery/mail-service/domain/entities"
)

type messageModel struct {
	ID           string `gorm:"primaryKey"`
	Recipient    string
	Subject      string
	Body         string
	Status       string `gorm:"index:idx_mail_status_scheduled,priority:1"`
	Attempts     int
	LastError    string
	ScheduledFor time.Time `gorm:"index:idx_mail_status_scheduled,priority:2"`
	SentAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (messageModel) TableName() string {
	return "mail_messages"
}

func messageModelFromEntity(message entities.Message) messageModel {
	return messageModel{
		ID:           message.ID,
		Recipient:    message.Recipient,
		Subject:      message.Subject,
		Body:         message.Body,
		Status:       string(message.Status),
		Attempts:     message.Attempts,
		LastError:    message.LastError,
		ScheduledFor: message.ScheduledFor,
		SentAt:       message.SentAt,
		CreatedAt:    message.CreatedAt,
		UpdatedAt:    message.UpdatedAt,
	}
}

func (m messageModel) toEntity() entities.Message {
	return entities.Message{
		ID:           m.ID,
		Recipient:    m.Recipient,
		Subject:      m.Subject,
		Body:         m.Body,
		Status:       entities.MessageStatus(m.Status),
		Attempts:     m.Attempts,
		LastError:    m.LastError,
		ScheduledFor: m.ScheduledFor,
		SentAt:       m.SentAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
