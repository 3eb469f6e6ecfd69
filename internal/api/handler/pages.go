package handler

import (
	"html"
)

const insufficientPage = `<!DOCTYPE html>
<html><head><title>Insufficient privileges</title></head>
<body><h1>Insufficient privileges</h1>
<p>Your account is not permitted to use this application.</p></body></html>`

func diagnosticPage(msg string) string {
	return `<!DOCTYPE html>
<html><head><title>Configuration error</title></head>
<body><h1>Configuration error</h1>
<p>` + html.EscapeString(msg) + `</p></body></html>`
}
