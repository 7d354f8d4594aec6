package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// With Template set, Data feeds the embedded templates and Subject/Text/HTML
// are ignored.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // two_factor_code, password_reset, feedback
	Data     map[string]any `json:"data,omitempty"`
}
