package email

import "time"

// Config holds outbound mail settings. The Postmark tokens may stay empty in
// development, where DevSender replaces the real client.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	ReplyToEmail         string `env:"REPLY_TO_EMAIL"`

	// SendBuffer > 0 marks the provider as rate limited: the mail queue
	// then dispatches sequentially with this delay between sends.
	SendBuffer time.Duration `env:"EMAIL_SEND_BUFFER" envDefault:"0"`
}
