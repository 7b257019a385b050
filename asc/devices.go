package asc

import (
	"net/url"
	"strconv"

	"github.com/ascdirector/ascdirector/types"
)

// defaultPageSize is the largest page the API allows for most collections.
const defaultPageSize = 200

type deviceAttributes struct {
	Name   string `json:"name"`
	UDID   string `json:"udid"`
	Status string `json:"status"`
}

type deviceResource struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Attributes deviceAttributes `json:"attributes"`
}

type deviceListDocument struct {
	Data  []deviceResource `json:"data"`
	Links pagedLinks       `json:"links"`
}

// ListDevices returns every enabled device in the account, following
// pagination links until exhausted.
func (c *Client) ListDevices() ([]types.Device, error) {
	query := url.Values{}
	query.Set("filter[status]", "ENABLED")
	query.Set("limit", strconv.Itoa(defaultPageSize))

	var devices []types.Device
	next := "/devices"
	for next != "" {
		var doc deviceListDocument
		if err := c.do("GET", next, query, nil, &doc); err != nil {
			return nil, err
		}
		for _, res := range doc.Data {
			devices = append(devices, types.Device{
				ID:   res.ID,
				Name: res.Attributes.Name,
				UDID: res.Attributes.UDID,
			})
		}
		next = doc.Links.Next
		query = nil
	}
	return devices, nil
}
