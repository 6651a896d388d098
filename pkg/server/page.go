package server

import (
	"html/template"
	"net/http"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<nav>
<a href="#/">home</a>
<a href="#/about">about</a>
<a href="#/contact">contact</a>
</nav>
<p>Use the links and the back button; the server follows along.</p>
<script src="{{.Client}}" data-socket="{{.Socket}}"></script>
</body>
</html>
`))

type pageData struct {
	Title  string
	Client string
	Socket string
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, pageData{
		Title:  s.config.Title,
		Client: ClientPath,
		Socket: SocketPath,
	}); err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}
