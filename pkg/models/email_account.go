package models

import "time"

// EmailAccount is a watched mailbox bound to a Telegram topic. New mail on
// the account is mined for verification codes and announced in the topic.
type EmailAccount struct {
	ID         int64     `db:"id"`
	Email      string    `db:"email"`
	Password   string    `db:"password"`    // AES-256-GCM encrypted
	IMAPServer string    `db:"imap_server"` // host:port
	ChatID     int64     `db:"chat_id"`     // Telegram supergroup ID
	TopicID    int       `db:"topic_id"`    // message_thread_id within the supergroup
	IsActive   bool      `db:"is_active"`
	LastUID    uint32    `db:"last_uid"` // last processed IMAP UID
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	CreatedBy  int64     `db:"created_by"` // Telegram user ID of the admin who added it
}
