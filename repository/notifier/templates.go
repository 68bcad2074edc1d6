package notifier

import (
	"bytes"
	"html/template"
)

var availableTmpl = template.Must(template.New("available").Parse(`<p>Bonjour {{.Name}},</p>
<p>Bonne nouvelle : le sac <strong>{{.Bag}}</strong> est de nouveau disponible.</p>
<p>Connectez-vous pour le réserver avant qu'il ne reparte.</p>`))

// BagAvailable builds the waitlist notification for one entry.
func BagAvailable(to, name, bag string) (Message, error) {
	if name == "" {
		name = to
	}
	var buf bytes.Buffer
	if err := availableTmpl.Execute(&buf, struct{ Name, Bag string }{name, bag}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: bag + " est disponible",
		HTML:    buf.String(),
	}, nil
}
