package fileserver

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE HTML>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Directory listing for {{.Path}}</title>
</head>
<body>
<h1>Directory listing for {{.Path}}</h1>
<hr>
<ul>
{{range .Entries}}<li><a href="{{.Href}}">{{.Name}}</a></li>
{{end}}</ul>
<hr>
</body>
</html>
`))

type listing struct {
	Path    string
	Entries []listingEntry
}

type listingEntry struct {
	Name string
	Href string
}

func (h *Handler) serveListing(w http.ResponseWriter, r *http.Request, name string, urlPath string) {
	dir, err := h.root.Open(name)
	if err != nil {
		notFound(w)
		return
	}
	entries, err := dir.ReadDir(-1)
	dir.Close()
	if err != nil {
		notFound(w)
		return
	}
	var content bytes.Buffer
	err = listingTemplate.Execute(&content, listing{
		Path:    urlPath,
		Entries: h.listingEntries(name, entries),
	})
	if err != nil {
		h.logger.Warn("render listing of ", urlPath, ": ", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(content.Len()))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(content.Bytes())
	}
}

// listingEntries orders entries case-insensitively, marks directories with a
// trailing slash and symlinks with a trailing "@".
func (h *Handler) listingEntries(dirName string, entries []fs.DirEntry) []listingEntry {
	byName := make(map[string]fs.DirEntry, len(entries))
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		byName[entry.Name()] = entry
		names = append(names, entry.Name())
	}
	collate.New(language.Und, collate.IgnoreCase).SortStrings(names)

	result := make([]listingEntry, 0, len(names))
	for _, entryName := range names {
		displayName, linkName := entryName, entryName
		info, err := h.root.Stat(path.Join(dirName, entryName))
		if err == nil && info.IsDir() {
			displayName += "/"
			linkName += "/"
		}
		if byName[entryName].Type()&fs.ModeSymlink != 0 {
			displayName = entryName + "@"
		}
		result = append(result, listingEntry{
			Name: displayName,
			Href: (&url.URL{Path: linkName}).String(),
		})
	}
	return result
}
