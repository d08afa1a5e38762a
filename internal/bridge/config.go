package bridge

const (
	DefaultAddr      = "localhost:7940"
	DefaultRateLimit = 10
)

// Config contains configuration for the GUI bridge server
type Config struct {
	Addr      string // host:port to bind, port 0 picks a free port
	Token     string // shared secret for /v1 routes, empty disables auth
	RateLimit int64  // requests per second per client, 0 disables limiting
}
