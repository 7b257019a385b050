package asc

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/ascdirector/ascdirector/types"
	"github.com/pkg/errors"
)

type profileAttributes struct {
	Name           string `json:"name"`
	ProfileType    string `json:"profileType"`
	Platform       string `json:"platform"`
	ProfileState   string `json:"profileState"`
	ProfileContent string `json:"profileContent"`
}

type profileResource struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Attributes profileAttributes `json:"attributes"`
}

type profileListDocument struct {
	Data  []profileResource `json:"data"`
	Links pagedLinks        `json:"links"`
}

type profileDocument struct {
	Data profileResource `json:"data"`
}

func profileFromResource(res profileResource) types.Profile {
	return types.Profile{
		ID:          res.ID,
		Name:        res.Attributes.Name,
		ProfileType: res.Attributes.ProfileType,
		Platform:    res.Attributes.Platform,
		State:       res.Attributes.ProfileState,
	}
}

// ListProfilesByName returns profiles whose name matches exactly, up to
// limit results.
func (c *Client) ListProfilesByName(name string, limit int) ([]types.Profile, error) {
	query := url.Values{}
	query.Set("filter[name]", name)
	query.Set("limit", strconv.Itoa(limit))
	return c.listProfiles("/profiles", query)
}

// ListProfilesByNameAndState constrains the name filter to a profile
// state. The API hides invalid profiles from default listings; querying
// the INVALID state explicitly is the only way to see them.
func (c *Client) ListProfilesByNameAndState(name, state string, limit int) ([]types.Profile, error) {
	query := url.Values{}
	query.Set("filter[name]", name)
	query.Set("filter[profileState]", state)
	query.Set("limit", strconv.Itoa(limit))
	return c.listProfiles("/profiles", query)
}

func (c *Client) listProfiles(urlStr string, query url.Values) ([]types.Profile, error) {
	var doc profileListDocument
	if err := c.do("GET", urlStr, query, nil, &doc); err != nil {
		return nil, err
	}
	profiles := make([]types.Profile, 0, len(doc.Data))
	for _, res := range doc.Data {
		profiles = append(profiles, profileFromResource(res))
	}
	return profiles, nil
}

// ListProfilesPage fetches one page of the unfiltered profile collection.
// Pass an empty next to start from the beginning; the returned next link is
// empty on the last page.
func (c *Client) ListProfilesPage(next string, limit int) ([]types.Profile, string, error) {
	urlStr := next
	var query url.Values
	if urlStr == "" {
		urlStr = "/profiles"
		query = url.Values{}
		query.Set("limit", strconv.Itoa(limit))
	}

	var doc profileListDocument
	if err := c.do("GET", urlStr, query, nil, &doc); err != nil {
		return nil, "", err
	}
	profiles := make([]types.Profile, 0, len(doc.Data))
	for _, res := range doc.Data {
		profiles = append(profiles, profileFromResource(res))
	}
	return profiles, doc.Links.Next, nil
}

// GetProfile fetches a single profile, including its content attribute.
func (c *Client) GetProfile(id string) (types.Profile, error) {
	var doc profileDocument
	if err := c.do("GET", "/profiles/"+id, nil, nil, &doc); err != nil {
		return types.Profile{}, err
	}
	profile := profileFromResource(doc.Data)
	profile.Content = []byte(doc.Data.Attributes.ProfileContent)
	return profile, nil
}

// JSON:API relationship plumbing for profile creation.
type relationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type relationship struct {
	Data relationshipData `json:"data"`
}

type relationshipList struct {
	Data []relationshipData `json:"data"`
}

type profileCreateAttributes struct {
	Name        string `json:"name"`
	ProfileType string `json:"profileType"`
}

type profileCreateRelationships struct {
	BundleID     relationship      `json:"bundleId"`
	Certificates relationshipList  `json:"certificates"`
	Devices      *relationshipList `json:"devices,omitempty"`
}

type profileCreateData struct {
	Type          string                     `json:"type"`
	Attributes    profileCreateAttributes    `json:"attributes"`
	Relationships profileCreateRelationships `json:"relationships"`
}

type profileCreateDocument struct {
	Data profileCreateData `json:"data"`
}

// CreateProfile creates a provisioning profile bound to one bundle ID,
// exactly one certificate, and an optional device set.
func (c *Client) CreateProfile(name, profileType, bundleID, certificateID string, deviceIDs []string) (types.Profile, error) {
	doc := profileCreateDocument{
		Data: profileCreateData{
			Type: "profiles",
			Attributes: profileCreateAttributes{
				Name:        name,
				ProfileType: profileType,
			},
			Relationships: profileCreateRelationships{
				BundleID: relationship{
					Data: relationshipData{Type: "bundleIds", ID: bundleID},
				},
				Certificates: relationshipList{
					Data: []relationshipData{{Type: "certificates", ID: certificateID}},
				},
			},
		},
	}
	if len(deviceIDs) > 0 {
		devices := relationshipList{Data: make([]relationshipData, 0, len(deviceIDs))}
		for _, deviceID := range deviceIDs {
			devices.Data = append(devices.Data, relationshipData{Type: "devices", ID: deviceID})
		}
		doc.Data.Relationships.Devices = &devices
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return types.Profile{}, errors.Wrap(err, "marshaling profile create request")
	}

	var created profileDocument
	if err := c.do("POST", "/profiles", nil, body, &created); err != nil {
		return types.Profile{}, err
	}
	return profileFromResource(created.Data), nil
}

// DeleteProfile deletes a profile by resource id.
func (c *Client) DeleteProfile(id string) error {
	return c.do("DELETE", "/profiles/"+id, nil, nil, nil)
}
