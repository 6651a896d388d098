package clientdist

import _ "embed"

// LokationJS is the thin client JavaScript.
//
// It is served by the server at "/_lokation/client.js".
//
//go:embed lokation.js
var LokationJS []byte
