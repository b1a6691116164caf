package notify

import (
	"cityvoice/backend/internal/localization"
	"cityvoice/backend/internal/models"
)

func language(c *models.Citizen) string {
	if c == nil || c.Language == "" {
		return localization.DefaultLanguage
	}
	return c.Language
}

func statusText(loc *localization.Localizer, lang string, s models.ReportStatus) string {
	return loc.GetString(lang, "status_"+string(s))
}

// Compose renders the subject and body a citizen receives for an event.
func Compose(loc *localization.Localizer, n Notification) (subject, body string) {
	lang := language(n.Citizen)
	ev := n.Event

	switch ev.Type {
	case models.EventReportSubmitted:
		subject = loc.GetString(lang, "email_subject_submitted")
		if ev.ManualReview {
			body = loc.Format(lang, "notify_submitted_review", ev.Title)
		} else {
			body = loc.Format(lang, "notify_submitted", ev.Title, statusText(loc, lang, ev.Status))
		}
	case models.EventReportMessage:
		subject = loc.GetString(lang, "email_subject_message")
		body = loc.Format(lang, "notify_message", ev.Title, ev.Message)
	default:
		subject = loc.GetString(lang, "email_subject_status")
		body = loc.Format(lang, "notify_status", ev.Title,
			statusText(loc, lang, ev.FromStatus), statusText(loc, lang, ev.Status))
		if ev.Message != "" {
			body += "\n\n" + ev.Message
		}
	}

	switch {
	case ev.TrustDelta > 0:
		body += "\n" + loc.Format(lang, "notify_trust_up", ev.TrustDelta)
	case ev.TrustDelta < 0:
		body += "\n" + loc.Format(lang, "notify_trust_down", -ev.TrustDelta)
	}
	return subject, body
}
