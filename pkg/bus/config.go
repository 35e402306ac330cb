package bus

// Config holds bus client configuration.
type Config struct {
	ConnectURL string `env:"BUS_CONNECT_URL,required"` // Endpoint accepting posted events
	Originator string `env:"BUS_ORIGINATOR" envDefault:"notifykit"`
}
