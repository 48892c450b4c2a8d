/*
Package server implements msgpack IPC for ticker spelling.

The server reads a stream of msgpack values from stdin and writes one msgpack
value per request to stdout. Logs go to stderr so the stream stays clean.

# IPC

Every message carries an ID that is echoed back in the matching response.
Spell requests run concurrently, so responses can come back in a different
order than the requests; clients match them by ID.
A spell request names the text and, optionally, a strategy key:

	{"id": "req_001", "t": "The Great Apple", "s": "overHyped"}

The server answers with one portfolio per strategy (all five when "s" is
empty, unless the server has a default strategy configured):

	{"id": "req_001", "p": [{"s": "overHyped", "k": ["AAPL"], "sc": 60, "tk": [{"c": "T", "r": 0}, ...]}], "ms": 1}

Token roles are 0 normal, 1 ticker, 2 in-between, 3 outside-ticker.

A health action reports the loaded universe:

	{"id": "hc_001", "a": "health"}

Failed requests produce an error frame with an HTTP-like code:

	{"id": "req_002", "e": "unknown strategy: \"yolo\"", "c": 400}

Before the first request the server emits a single ready frame
{"status": "ready"}.
*/
package server

// Actions understood by the server. An empty action means ActionSpell.
const (
	ActionSpell  = "spell"
	ActionHealth = "health"
)

// SpellRequest asks for the portfolios of a text.
type SpellRequest struct {
	ID       string `msgpack:"id"`
	Action   string `msgpack:"a,omitempty"`
	Text     string `msgpack:"t"`
	Strategy string `msgpack:"s,omitempty"`
}

// TokenEntry is one character of the input and its role.
type TokenEntry struct {
	Char string `msgpack:"c"`
	Role uint8  `msgpack:"r"`
}

// PortfolioEntry - minimal portfolio for one strategy
type PortfolioEntry struct {
	Strategy string       `msgpack:"s"`
	Tickers  []string     `msgpack:"k"`
	Score    float64      `msgpack:"sc"`
	Tokens   []TokenEntry `msgpack:"tk"`
}

// SpellResponse - spell response
type SpellResponse struct {
	ID         string           `msgpack:"id"`
	Portfolios []PortfolioEntry `msgpack:"p"`
	TimeTaken  int64            `msgpack:"ms"`
}

// HealthResponse reports server status and universe size.
type HealthResponse struct {
	ID       string `msgpack:"id"`
	Status   string `msgpack:"status"`
	Tickers  int    `msgpack:"n"`
	Requests int    `msgpack:"rq"`
}

// ReadyFrame is written once when the server starts listening.
type ReadyFrame struct {
	Status string `msgpack:"status"`
}

// SpellError holds basic error information for failed requests
type SpellError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
