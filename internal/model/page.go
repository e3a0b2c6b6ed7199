package model

// RenderedPage is the outcome of loading a URL in the browser context.
type RenderedPage struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	HTML  string `json:"html"`
	// Text is the visible body text after client-side scripts ran.
	Text string `json:"text"`
	// JSONPayloads holds JSON response bodies observed over the network
	// during load. Covers sites that hydrate content from an API instead
	// of server-rendering it.
	JSONPayloads []string `json:"json_payloads,omitempty"`
}
