package client

type RotaClient struct {
	Transport  *Transport
	Timesheets *TimesheetEndpoint
}

// NewRotaClient initializes the API client
func NewRotaClient(baseURL string, token string) *RotaClient {
	t := NewTransport(baseURL, token)
	return &RotaClient{
		Transport:  t,
		Timesheets: &TimesheetEndpoint{transport: t},
	}
}
