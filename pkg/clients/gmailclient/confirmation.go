package gmailclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jakechorley/volunteer-hub/pkg/notify"
)

// SendConfirmationEmail tells a volunteer their signup was confirmed
func (c *Client) SendConfirmationEmail(ctx context.Context, email notify.ConfirmationEmail) error {
	subject, body := confirmationContent(email, c.siteURL)
	return c.SendEmail(ctx, email.To, subject, body)
}

func confirmationContent(email notify.ConfirmationEmail, siteURL string) (subject, body string) {
	subject = fmt.Sprintf("Shift confirmed: %s on %s", email.ShiftName, email.ShiftDate)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", email.VolunteerName)
	fmt.Fprintf(&sb, "Your signup has been confirmed. See you there!\n\n")
	fmt.Fprintf(&sb, "Shift: %s\n", email.ShiftName)
	fmt.Fprintf(&sb, "Date: %s\n", email.ShiftDate)
	fmt.Fprintf(&sb, "Time: %s\n", email.ShiftTime)
	fmt.Fprintf(&sb, "Location: %s\n", email.Location)
	if siteURL != "" {
		fmt.Fprintf(&sb, "\nShift details: %s/shifts/%s\n", strings.TrimRight(siteURL, "/"), email.ShiftID)
	}
	sb.WriteString("\nIf you can no longer make it, please cancel your signup so someone else can take the place.\n")

	return subject, sb.String()
}
