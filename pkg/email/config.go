package email

// Config holds email delivery configuration.
// Postmark tokens are optional to support development environments where
// direct email sending is disabled in favor of the dev disk sender.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SenderName           string `env:"SENDER_NAME" envDefault:"Notifications"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}
