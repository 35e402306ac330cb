package bundler

// Config is the static configuration surface of the bundling engine.
// ReplyDomain/ReplyPrefix and SigningSecret feed the synthesized reply
// addresses on messaging events; DevEmailOverride redirects every outbound
// email outside production.
type Config struct {
	EmailTopic       string `env:"EMAIL_TOPIC" envDefault:"notifications.action.email.generic"`
	ServiceID        string `env:"NOTIFICATION_SERVICE_ID" envDefault:"email"`
	FromEmail        string `env:"REPLY_FROM_EMAIL,required"`
	FromName         string `env:"REPLY_FROM_NAME" envDefault:"Notifications"`
	MentionCC        string `env:"MENTION_CC_EMAIL"`
	ReplyDomain      string `env:"REPLY_EMAIL_DOMAIN"`
	ReplyPrefix      string `env:"REPLY_EMAIL_PREFIX" envDefault:"reply"`
	SigningSecret    string `env:"NOTIFICATION_SIGNING_SECRET,required"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	DevEmailOverride string `env:"DEV_EMAIL_OVERRIDE"`
	BundleSubject    string `env:"BUNDLE_SUBJECT" envDefault:"Your recent updates"`
}
