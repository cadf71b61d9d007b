package themes

import (
	"fmt"
	"path"
	"strings"
)

// AssetURLs returns the public URLs of the theme stylesheets and scripts
// under prefix, e.g. "/assets".
func (t Theme) AssetURLs(prefix string) (styles, scripts []string, err error) {
	for _, asset := range t.Assets.Styles {
		url, err := t.assetURL(prefix, asset)
		if err != nil {
			return nil, nil, err
		}
		styles = append(styles, url)
	}
	for _, asset := range t.Assets.Scripts {
		url, err := t.assetURL(prefix, asset)
		if err != nil {
			return nil, nil, err
		}
		scripts = append(scripts, url)
	}
	return styles, scripts, nil
}

func (t Theme) assetURL(prefix, asset string) (string, error) {
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return "", fmt.Errorf("themes: asset path required")
	}
	base := path.Clean("/" + t.Assets.BasePath)
	joined := path.Join(base, asset)
	if base != "/" && !strings.HasPrefix(joined, base+"/") {
		return "", fmt.Errorf("themes: asset traversal detected: %s", asset)
	}
	return path.Join("/", prefix, joined), nil
}
