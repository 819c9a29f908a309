package templates

const pageTemplates = `
{{define "envelope"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="margin:0;padding:0;background:#f4f4f7;font-family:Helvetica,Arial,sans-serif;color:#1f2937;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0"><tr><td align="center" style="padding:24px;">
<table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;">
<tr><td style="padding:20px 32px;background:#111827;border-radius:8px 8px 0 0;color:#ffffff;font-size:20px;font-weight:bold;">{{.SiteName}}</td></tr>
<tr><td style="padding:32px;font-size:15px;line-height:1.6;">{{.Content}}</td></tr>
<tr><td style="padding:16px 32px;font-size:12px;color:#6b7280;border-top:1px solid #e5e7eb;">You are receiving this email because you have an account on <a href="{{.SiteURL}}" style="color:#6b7280;">{{.SiteName}}</a>.</td></tr>
</table>
</td></tr></table>
</body>
</html>{{end}}

{{define "receipt"}}<p>Hi {{.Name}},</p>
<p><strong>{{.Label}}</strong>: {{.Amount}}</p>
{{with .Description}}<p>{{.}}</p>{{end}}
{{with .Reference}}<p style="color:#6b7280;">Reference: {{.}}</p>{{end}}
<p><a href="{{.WalletURL}}">View your wallet</a></p>{{end}}

{{define "submission_received"}}<p>Hi {{.Name}},</p>
<p>A new song was submitted to <strong>{{.Playlist}}</strong>.</p>
<p>Song: {{if .SongLink}}<a href="{{.SongLink}}">{{.SongTitle}}</a>{{else}}{{.SongTitle}}{{end}}<br>Fee paid: {{.Amount}}</p>
<p><a href="{{.DashboardURL}}">Review it on your dashboard</a></p>{{end}}

{{define "submission_accepted"}}<p>Hi {{.Name}},</p>
<p>Great news! Your song <strong>{{.SongTitle}}</strong> was accepted{{with .Playlist}} for <strong>{{.}}</strong>{{end}}.</p>
{{with .TrackingURL}}<p>Track its placement here: <a href="{{.}}">{{.}}</a></p>{{end}}{{end}}

{{define "submission_declined"}}<p>Hi {{.Name}},</p>
<p>Your song <strong>{{.SongTitle}}</strong> was not selected{{with .Playlist}} for <strong>{{.}}</strong>{{end}} this time.</p>
<p>Refund: <strong>{{.Refund}}</strong> has been returned to your wallet.</p>
{{with .Feedback}}<p>Curator feedback:</p><blockquote style="margin:0;padding:8px 16px;border-left:3px solid #e5e7eb;">{{.}}</blockquote>{{end}}
<p><a href="{{.WalletURL}}">View your wallet</a></p>{{end}}

{{define "withdrawal_status"}}<p>Hi {{.Name}},</p>
<p>Your withdrawal of <strong>{{.Amount}}</strong> is now <strong>{{.Status}}</strong>.</p>
{{if .Bank}}<p>Destination: {{.Bank}}{{with .Account}} {{.}}{{end}}</p>{{end}}{{end}}

{{define "ticket_status"}}<p>Hi {{.Name}},</p>
<p>Your support ticket{{with .Subject}} "{{.}}"{{end}} is now <strong>{{.Status}}</strong>.</p>
<p><a href="{{.TicketURL}}">Open support</a></p>{{end}}
`
