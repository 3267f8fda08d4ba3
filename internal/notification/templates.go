// internal/notification/templates.go

package notification

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"
)

type mutualMatchData struct {
	Name        string
	PartnerName string
	Source      Source
}

const mutualMatchSubject = "It's a match!"

var (
	mutualMatchText = template.Must(template.New("mutual_text").Parse(
		`Hi {{.Name}}, you and {{.PartnerName}} are interested in each other. {{if eq .Source "crush_list"}}You both put each other on your crush lists.{{else}}You both said yes.{{end}} Open Wizard Match to say hello.`))

	mutualMatchHTML = htmltemplate.Must(htmltemplate.New("mutual_html").Parse(
		`<p>Hi {{.Name}},</p>
<p>You and <strong>{{.PartnerName}}</strong> are interested in each other.</p>
<p>{{if eq .Source "crush_list"}}You both put each other on your crush lists.{{else}}You both said yes.{{end}}</p>
<p>Open Wizard Match to say hello.</p>`))
)

func renderMutualMatch(data mutualMatchData) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := mutualMatchText.Execute(&tb, data); err != nil {
		return "", "", err
	}
	if err := mutualMatchHTML.Execute(&hb, data); err != nil {
		return "", "", err
	}
	return tb.String(), hb.String(), nil
}
