package domain

import "time"

// ContactAcknowledgement is returned to the sender once a message is accepted.
const ContactAcknowledgement = "Your message has been received. We'll get back to you soon!"

// ContactMessage is an inbound contact-form submission.
type ContactMessage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}
