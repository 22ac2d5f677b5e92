package handlers

type ScanRequest struct {
	URL string `json:"url" binding:"required"`
}

type RegisterRequest struct {
	URL string `json:"url" binding:"required"`
}

type RegisterResponse struct {
	Target string `json:"target"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	DaemonReady bool   `json:"daemon_ready"`
}
