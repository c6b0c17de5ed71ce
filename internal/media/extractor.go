package media

import (
	"context"
	"log"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BlobUploader is the slice of Uploader the extractor needs.
type BlobUploader interface {
	Upload(ctx context.Context, data []byte, contentType, folder string) (Object, error)
}

// Extractor finds temporary image references in a content body, uploads
// each through a bounded worker fan-out and rewrites the body with the
// permanent URLs. A failed reference is logged and left untouched; the
// batch never aborts.
type Extractor struct {
	uploader BlobUploader
	fetch    Fetcher
	workers  int
}

func NewExtractor(uploader BlobUploader, fetch Fetcher, workers int) *Extractor {
	if workers <= 0 {
		workers = 4
	}
	return &Extractor{uploader: uploader, fetch: fetch, workers: workers}
}

func (e *Extractor) Extract(ctx context.Context, body, folder string) ExtractResult {
	roots, err := parseFragment(body)
	if err != nil {
		log.Printf("media extract: parse body: %v", err)
		return ExtractResult{Body: body}
	}

	// Distinct temporary refs in document order; a ref used by several img
	// tags uploads once and rewrites everywhere.
	temp := map[string][]*html.Node{}
	var order []string
	var result ExtractResult
	for _, root := range roots {
		walkImages(root, func(n *html.Node, src string) {
			if isPermanent(src) {
				result.Uploaded = append(result.Uploaded, src)
				return
			}
			if _, seen := temp[src]; !seen {
				order = append(order, src)
			}
			temp[src] = append(temp[src], n)
		})
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, e.workers)
		ok  = map[string]bool{}
	)
	for _, ref := range order {
		ref := ref
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, contentType, err := e.fetch.Fetch(ctx, ref)
			if err != nil {
				log.Printf("media extract: fetch reference: %v", err)
				return
			}
			obj, err := e.uploader.Upload(ctx, data, contentType, folder)
			if err != nil {
				log.Printf("media extract: upload reference: %v", err)
				return
			}

			mu.Lock()
			defer mu.Unlock()
			ok[ref] = true
			result.Uploaded = append(result.Uploaded, obj.URL)
			for _, n := range temp[ref] {
				setSrc(n, obj.URL)
			}
		}()
	}
	wg.Wait()

	for _, ref := range order {
		if !ok[ref] {
			result.Failed = append(result.Failed, ref)
		}
	}

	result.Body = renderFragment(roots)
	return result
}

func isPermanent(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func parseFragment(body string) ([]*html.Node, error) {
	ctxNode := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(body), ctxNode)
}

func renderFragment(roots []*html.Node) string {
	var sb strings.Builder
	for _, root := range roots {
		if err := html.Render(&sb, root); err != nil {
			log.Printf("media extract: render body: %v", err)
		}
	}
	return sb.String()
}

func walkImages(n *html.Node, fn func(n *html.Node, src string)) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		if src := getSrc(n); src != "" {
			fn(n, src)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkImages(c, fn)
	}
}

func getSrc(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "src" {
			return a.Val
		}
	}
	return ""
}

func setSrc(n *html.Node, url string) {
	for i, a := range n.Attr {
		if a.Key == "src" {
			n.Attr[i].Val = url
			return
		}
	}
}
