package releaser

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/cli/go-gh/v2/pkg/browser"

	"github.com/grokify/releaseconductor/pkg/model"
)

// DefaultHost is the GitHub host used for web links and stored tokens.
const DefaultHost = "github.com"

// Browser opens URLs for the user.
type Browser interface {
	Browse(url string) error
}

// NewBrowser returns a Browser that honors $BROWSER and the gh config.
func NewBrowser(stdout, stderr io.Writer) Browser {
	return browser.New("", stdout, stderr)
}

// WebReleaseURL returns the prefilled "new release" page for a tag.
func WebReleaseURL(repo model.RepoRef, tag, title, body string, prerelease bool) string {
	q := url.Values{}
	q.Set("tag", tag)
	q.Set("title", title)
	q.Set("body", TruncateBody(body))
	q.Set("prerelease", strconv.FormatBool(prerelease))
	return fmt.Sprintf("https://%s/%s/%s/releases/new?%s", DefaultHost, repo.Owner, repo.Name, q.Encode())
}

// ReleaseURL returns the page of the release for tag.
func ReleaseURL(repo model.RepoRef, tag string) string {
	return fmt.Sprintf("https://%s/%s/%s/releases/tag/%s", DefaultHost, repo.Owner, repo.Name, url.PathEscape(tag))
}

// StoredToken returns the token saved by the gh CLI for github.com, or "".
func StoredToken() string {
	token, _ := auth.TokenForHost(DefaultHost)
	return token
}
