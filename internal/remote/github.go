package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/conn-castle/yaam/internal/messages"
)

// Asset is one downloadable file of a release.
type Asset struct {
	Name string
	URL  string
}

// ResolveAssets returns the assets of a GitHub latest release. Any other URL resolves to a single
// asset pointing at itself. A "#name" fragment on a release URL is left for SelectAsset.
func (c *Client) ResolveAssets(ctx context.Context, uri string) ([]Asset, error) {
	uri = strings.TrimSpace(uri)
	if !c.IsLatestReleaseURL(uri) {
		return []Asset{{Name: assetNameFromURL(uri), URL: uri}}, nil
	}
	release, _ := splitAssetFragment(uri)
	resp, err := c.do(ctx, c.api, http.MethodGet, release, c.maxBytes)
	if err != nil {
		return nil, err
	}
	assets, err := parseReleaseAssets(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(messages.RemoteDecodeReleaseFmt, uri, err)
	}
	if len(assets) == 0 {
		return nil, &NoAssetsError{URL: uri}
	}
	return assets, nil
}

func parseReleaseAssets(body []byte) ([]Asset, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf(messages.RemoteInvalidReleaseJSON)
	}
	var assets []Asset
	gjson.GetBytes(body, "assets").ForEach(func(_, item gjson.Result) bool {
		link := strings.TrimSpace(item.Get("browser_download_url").String())
		if link == "" {
			return true
		}
		name := strings.TrimSpace(item.Get("name").String())
		if name == "" {
			name = assetNameFromURL(link)
		}
		assets = append(assets, Asset{Name: name, URL: link})
		return true
	})
	return assets, nil
}

func assetNameFromURL(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return path.Base(u.Path)
}

// splitAssetFragment separates the "#asset-name" suffix of uri.
func splitAssetFragment(uri string) (string, string) {
	base, fragment, ok := strings.Cut(uri, "#")
	if !ok {
		return uri, ""
	}
	if name, err := url.PathUnescape(fragment); err == nil {
		fragment = name
	}
	return base, strings.TrimSpace(fragment)
}

// SelectAsset picks the single asset of a release or reports why it cannot. When the release has
// several, a "#name" fragment on uri selects the asset of that name.
func SelectAsset(uri string, assets []Asset) (Asset, error) {
	switch len(assets) {
	case 0:
		return Asset{}, &NoAssetsError{URL: uri}
	case 1:
		return assets[0], nil
	default:
		if _, want := splitAssetFragment(uri); want != "" {
			for _, a := range assets {
				if strings.EqualFold(a.Name, want) {
					return a, nil
				}
			}
		}
		return Asset{}, &AmbiguousAssetError{URL: uri, Candidates: append([]Asset(nil), assets...)}
	}
}
