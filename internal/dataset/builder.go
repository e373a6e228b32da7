package dataset

import (
	"path/filepath"

	"github.com/handiism/geodata-downloader/internal/model"
)

// BuildPaths returns one URL per token, in token order.
//
// The result always has len(tokens) entries. Tokens are neither validated
// nor deduplicated and no network access happens.
func BuildPaths(t model.Template, tokens []string) []string {
	urls := make([]string, len(tokens))
	for i, token := range tokens {
		urls[i] = t.URL(token)
	}
	return urls
}

// LocalNames returns the artifact file name for every token, in token order.
func LocalNames(t model.Template, tokens []string) []string {
	names := make([]string, len(tokens))
	for i, token := range tokens {
		names[i] = t.LocalName(token)
	}
	return names
}

// Items pairs every URL with its local name and the artifact path inside
// destDir. urls and localNames must have the same length.
func Items(urls, localNames []string, destDir string) []model.Item {
	items := make([]model.Item, len(urls))
	for i := range urls {
		items[i] = model.Item{
			Index:     i,
			URL:       urls[i],
			LocalName: localNames[i],
			Path:      filepath.Join(destDir, localNames[i]),
		}
	}
	return items
}
