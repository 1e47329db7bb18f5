package gmailclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
)

// EmailInterval is the minimum gap between two sends, to respect Gmail API rate limits
const EmailInterval = 3 * time.Second

// SendEmail sends a plain text email with the specified subject and body.
// Sends are serialised and throttled to EmailInterval.
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.lastSendTime.IsZero() {
		if wait := c.interval - time.Since(c.lastSendTime); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("failed to send email: %w", ctx.Err())
			}
		}
	}

	gmailMessage := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(c.buildMessage(to, subject, body))),
	}

	if _, err := c.service.Users.Messages.Send(c.userID, gmailMessage).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.lastSendTime = time.Now()
	c.logger.Debug("Sent email", zap.String("to", to), zap.String("subject", subject))

	return nil
}

// headerBreaks folds line breaks in header values so they cannot start a new header
var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// buildMessage renders an RFC 2822 message
func (c *Client) buildMessage(to, subject, body string) string {
	var sb strings.Builder
	if c.sender != "" {
		fmt.Fprintf(&sb, "From: %s\r\n", headerBreaks.Replace(c.sender))
	}
	fmt.Fprintf(&sb, "To: %s\r\n", headerBreaks.Replace(to))
	fmt.Fprintf(&sb, "Subject: %s\r\n", headerBreaks.Replace(subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return sb.String()
}
