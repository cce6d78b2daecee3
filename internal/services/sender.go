package services

import "context"

// Sender delivers an outbound text to a customer on the messaging channel.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}
