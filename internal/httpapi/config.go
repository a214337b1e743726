package httpapi

// maxBodyBytes caps request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20 // 1 MiB

// SetMaxBodyBytes overrides the request body cap. Values <= 0 are ignored.
func SetMaxBodyBytes(n int64) {
	if n > 0 {
		maxBodyBytes = n
	}
}

var (
	corsEnabled        bool
	corsAllowedOrigins = []string{"*"}
)

// SetCORS configures the CORS middleware before NewMux is called.
func SetCORS(enabled bool, origins []string) {
	corsEnabled = enabled
	if len(origins) > 0 {
		corsAllowedOrigins = origins
	}
}
