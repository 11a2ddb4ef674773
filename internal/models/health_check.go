package models

type HealthCheck struct {
	Status     string `json:"status"`
	TokenCache string `json:"tokenCache"`
	Error      string `json:"error,omitempty"`
}
