package models

// UserExport is the single JSON document produced for one account. Every
// datetime field is rendered as an RFC 3339 string so the document is
// self-contained outside the system.
type UserExport struct {
	ExportDate string              `json:"export_date"`
	Profile    ExportProfile       `json:"profile"`
	Texts      []ExportedText      `json:"generated_texts"`
	Activities []ExportedActivity  `json:"activity_history"`
	Logins     []ExportedLogin     `json:"login_history"`
}

// ExportProfile holds the account fields included in an export.
type ExportProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// ExportedText is one generation-history record in export form.
type ExportedText struct {
	InputText  string `json:"input_text"`
	OutputText string `json:"generated_text"`
	IPAddress  string `json:"ip_address"`
	CreatedAt  string `json:"created_at"`
}

// ExportedActivity is one activity log entry in export form.
type ExportedActivity struct {
	Action      string         `json:"action"`
	Description string         `json:"description"`
	IPAddress   string         `json:"ip_address"`
	UserAgent   string         `json:"user_agent"`
	Timestamp   string         `json:"timestamp"`
	Data        map[string]any `json:"additional_data,omitempty"`
}

// ExportedLogin is one login log entry in export form.
type ExportedLogin struct {
	LoginTime  string  `json:"login_time"`
	LogoutTime *string `json:"logout_time,omitempty"`
	IPAddress  string  `json:"ip_address"`
	UserAgent  string  `json:"user_agent"`
	SessionKey string  `json:"session_key"`
	Successful bool    `json:"successful"`
}
