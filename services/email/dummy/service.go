// Package dummymail collects outgoing mail in memory for tests.
package dummymail

import (
	"log"
	"net/mail"
	"strings"

	"github.com/dagmawi/collegehub/core"
)

var SentMessages = make([]core.EmailMessage, 0)

type service struct {
	subjPrefix string
}

var _ core.EmailService = (*service)(nil)

func NewService(appName string) core.EmailService {
	return &service{subjPrefix: "[" + appName + "] "}
}

func (svc service) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if msg.HasRecipients() && msg.HasContent() {
			SentMessages = append(SentMessages, *msg)
			log.Printf("To: %s\nSubject: %s\n\n%s\n", joinAddresses(msg.To), svc.subjPrefix+msg.Subject, msg.Body)
		}
	}
}

func joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}

// Reset clears collected messages between tests.
func Reset() {
	SentMessages = SentMessages[:0]
}
