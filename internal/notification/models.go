// internal/notification/models.go

package notification

// Source says how a mutual match came about.
type Source string

const (
	SourceCrushList Source = "crush_list"
	SourceSwipe     Source = "swipe"
)

// EmailNotification is one outgoing email.
type EmailNotification struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
}

// SMSNotification is one outgoing text message.
type SMSNotification struct {
	To      string
	Message string
}
