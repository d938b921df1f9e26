package gateway

import (
	"strings"

	"github.com/roadieapp/roadie/internal/trigger"
)

// kindHeadlines maps session kinds to the alert headline.
var kindHeadlines = map[trigger.Kind]string{
	trigger.KindGeneral:      "EMERGENCY ALERT",
	trigger.KindMedical:      "MEDICAL EMERGENCY",
	trigger.KindFire:         "FIRE EMERGENCY",
	trigger.KindPolice:       "POLICE EMERGENCY",
	trigger.KindSilent:       "EMERGENCY ALERT",
	trigger.KindLocationOnly: "LOCATION ALERT",
}

// RenderMessage builds the text body for a notice. The resolved notice is
// deliberately short; the alert carries location and, when cleared, the
// medical summary.
func RenderMessage(n Notice) string {
	if n.Kind == NoticeResolved {
		return "All clear: the emergency alert has been resolved. No further action is needed."
	}

	headline, ok := kindHeadlines[n.Session.Kind]
	if !ok {
		headline = "EMERGENCY ALERT"
	}

	var b strings.Builder
	b.WriteString(headline)
	b.WriteString(": your emergency contact needs help.")

	if n.Session.Location != nil {
		b.WriteString("\nLast known location: ")
		b.WriteString(n.Session.Location.MapsURL())
	} else {
		b.WriteString("\nLocation is currently unavailable.")
	}

	if n.MedicalSummary != "" {
		b.WriteString("\n\n")
		b.WriteString(n.MedicalSummary)
	}

	return b.String()
}
