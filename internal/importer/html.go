package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nikbrunner/sbm/internal/classify"
	"github.com/nikbrunner/sbm/internal/model"
)

// ParseHTMLBookmarks parses a Netscape bookmark file as exported by browsers.
// Folders are flat in sbm, so every <H3> becomes a top-level folder and a
// bookmark belongs to the innermost folder around it.
func ParseHTMLBookmarks(r io.Reader) (Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var res Result
	byName := make(map[string]string) // lowercased name -> folder id
	var stack []string                // enclosing folder ids
	pending := ""                     // folder waiting for its <DL>

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name == "" {
					return
				}
				key := strings.ToLower(name)
				id, ok := byName[key]
				if !ok {
					f := model.NewFolder(model.NewFolderParams{Name: name})
					res.Folders = append(res.Folders, f)
					byName[key] = f.ID
					id = f.ID
				}
				pending = id
				return

			case "a":
				href := strings.TrimSpace(getAttr(n, "href"))
				if !hasHTTPScheme(href) {
					res.Invalid++
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}
				folder := model.DefaultFolderID
				if len(stack) > 0 {
					folder = stack[len(stack)-1]
				}
				detected := classify.Detect(href)
				res.Bookmarks = append(res.Bookmarks, model.Bookmark{
					URL:       href,
					Title:     title,
					Category:  detected.Category,
					Platform:  detected.Platform,
					FolderID:  folder,
					Tags:      splitTags(getAttr(n, "tags"), ","),
					Timestamp: addDate(getAttr(n, "add_date")),
					Favicon:   getAttr(n, "icon_uri"),
				})
				return

			case "dl":
				pushed := false
				if pending != "" {
					stack = append(stack, pending)
					pending = ""
					pushed = true
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return res, nil
}

// addDate converts an ADD_DATE attribute (epoch seconds) to millis.
func addDate(s string) int64 {
	ts, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || ts <= 0 {
		return 0
	}
	return ts * 1000
}

func getTextContent(n *html.Node) string {
	var text strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(text.String())
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
