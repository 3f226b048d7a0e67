// Package worker generates the edge worker source deployed to Cloudflare.
// Generation is a pure serialization step: no I/O, no state, and every
// string interpolated into the produced JavaScript goes through an explicit
// escaping pass so a keyword containing a quote cannot break out of its
// literal.
package worker

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Policy parameterizes one generated worker script.
type Policy struct {
	ScriptName      string
	Keywords        []string
	WhitelistPaths  []string
	EnableAlert     bool
	CallbackBaseURL string
}

// forbiddenHTML is the fixed 403 page served when a keyword matches.
const forbiddenHTML = `<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"><title>403</title><style> .container { max-width: 800px; margin: 0 auto; padding: 40px 20px; font-family: -apple-system, BlinkMacSystemFont,'Segoe UI', sans-serif; text-align: center; } h1 { color: #333; margin-bottom: 1rem; } p { color: #666; margin-bottom: 2rem; } </style></head><body><div class="container"><h1>403 Forbidden</h1><p>This URL is blocked because it contains inappropriate contents.</p></div></body></html>`

var workerTemplate = template.Must(template.New("worker").Parse(`addEventListener('fetch', event => {
    event.respondWith(handleRequest(event.request, event));
});

const whitelistPaths = [{{.WhitelistJS}}];
const forbiddenKeywords = [{{.KeywordsJS}}];
const forbiddenBody = '{{.ForbiddenBodyJS}}';

async function handleRequest(request, event) {
    const url = new URL(request.url);
    const path = url.pathname;

    if (whitelistPaths.includes(path)) {
        return fetch(request);
    }

    const response = await fetch(request);
    const responseClone = response.clone();
    const contentType = response.headers.get('Content-Type') || '';

    let body;
    try {
        if (contentType.includes('application/json')) {
            body = await responseClone.json();
        } else if (contentType.includes('text')) {
            body = await responseClone.text();
        } else {
            return response;
        }
    } catch (err) {
        console.error('Failed to parse response body:', err);
        return response;
    }

    const haystack = (typeof body === 'string' ? body : JSON.stringify(body)).toLowerCase();
    const detectedKeywords = forbiddenKeywords.filter(keyword => haystack.includes(keyword.toLowerCase()));

    if (detectedKeywords.length === 0) {
        return response;
    }
{{if .EnableAlert}}
    const alertData = {
        fullPath: request.url,
        time: new Date().toISOString(),
        sourceIP: request.headers.get('CF-Connecting-IP') || request.headers.get('X-Forwarded-For') || 'unknown',
        responseCode: 403,
        scriptName: '{{.ScriptNameJS}}',
        detectedKeywords: detectedKeywords
    };

    event.waitUntil(
        fetch('{{.AlertURLJS}}', {
            method: 'POST',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify(alertData)
        })
        .then(res => res.text().then(text => {
            console.log('alert response', res.status, text);
        }))
        .catch(err => {
            console.error('alert trigger failed:', err);
        })
    );
{{end}}
    return new Response(forbiddenBody, {
        status: 403,
        headers: { 'Content-Type': 'text/html; charset=utf-8' }
    });
}
`))

type templateData struct {
	WhitelistJS     string
	KeywordsJS      string
	ForbiddenBodyJS string
	ScriptNameJS    string
	AlertURLJS      string
	EnableAlert     bool
}

// Generate renders the worker source for the given policy. The output is
// deterministic: identical policies always yield identical source.
func Generate(p Policy) (string, error) {
	data := templateData{
		WhitelistJS:     jsStringArray(p.WhitelistPaths),
		KeywordsJS:      jsStringArray(p.Keywords),
		ForbiddenBodyJS: escapeJS(forbiddenHTML),
		ScriptNameJS:    escapeJS(p.ScriptName),
		AlertURLJS:      escapeJS(strings.TrimRight(p.CallbackBaseURL, "/") + "/api/trigger"),
		EnableAlert:     p.EnableAlert,
	}

	var buf bytes.Buffer
	if err := workerTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render worker template: %w", err)
	}
	return buf.String(), nil
}

// jsStringArray renders a slice as comma-separated single-quoted JS string
// literals. A nil or empty slice renders as an empty array body.
func jsStringArray(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		quoted = append(quoted, "'"+escapeJS(item)+"'")
	}
	return strings.Join(quoted, ", ")
}

var jsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// escapeJS makes a string safe to embed inside a single-quoted JS literal.
func escapeJS(s string) string {
	return jsEscaper.Replace(s)
}
