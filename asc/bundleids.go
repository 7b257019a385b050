package asc

import (
	"net/url"

	"github.com/ascdirector/ascdirector/types"
)

type bundleIDAttributes struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Platform   string `json:"platform"`
}

type bundleIDResource struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Attributes bundleIDAttributes `json:"attributes"`
}

type bundleIDListDocument struct {
	Data  []bundleIDResource `json:"data"`
	Links pagedLinks         `json:"links"`
}

// ListBundleIDs returns the bundle ID resources matching the exact
// reverse-DNS identifier.
func (c *Client) ListBundleIDs(identifier string) ([]types.BundleID, error) {
	query := url.Values{}
	query.Set("filter[identifier]", identifier)

	var doc bundleIDListDocument
	if err := c.do("GET", "/bundleIds", query, nil, &doc); err != nil {
		return nil, err
	}

	// The identifier filter is a substring match server-side; keep exact
	// matches only.
	var bundles []types.BundleID
	for _, res := range doc.Data {
		if res.Attributes.Identifier != identifier {
			continue
		}
		bundles = append(bundles, types.BundleID{
			ID:         res.ID,
			Identifier: res.Attributes.Identifier,
		})
	}
	return bundles, nil
}
