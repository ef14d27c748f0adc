package broker

// Request is one client message, framed as a newline-delimited JSON object.
type Request struct {
	Op        string `json:"op"`
	DeviceID  string `json:"device_id,omitempty"`
	Command   string `json:"command,omitempty"`
	RequestID string `json:"request_id"`
}

const (
	OpExec       = "exec"
	OpDisconnect = "disconnect"
	OpStats      = "stats"
)

// Response is one server reply, also framed as newline-delimited JSON.
type Response struct {
	RequestID  string `json:"request_id"`
	OK         bool   `json:"ok"`
	Output     string `json:"output,omitempty"`
	Cached     bool   `json:"cached,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Message    string `json:"message,omitempty"`

	// Stats is populated only for an OpStats response.
	Stats *Statistics `json:"stats,omitempty"`
}

// Statistics is the broker's running hit/miss counters, also rendered as
// the BROKER_STATISTICS log line on shutdown. RestartCount/UptimeSeconds are
// filled in from the broker's BaseService lifecycle, not tracked here.
type Statistics struct {
	ConnectionHits   int64   `json:"connection_hits"`
	ConnectionMisses int64   `json:"connection_misses"`
	CommandHits      int64   `json:"command_hits"`
	CommandMisses    int64   `json:"command_misses"`
	RestartCount     int     `json:"restart_count"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

const (
	ErrorKindTransport = "BrokerTransportError"
	ErrorKindAuth      = "BrokerAuthError"
	ErrorKindTimeout   = "BrokerTimeoutError"
)
