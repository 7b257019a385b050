package asc

import (
	"net/url"
	"strconv"
	"time"

	"github.com/ascdirector/ascdirector/types"
)

type certificateAttributes struct {
	Name            string    `json:"name"`
	DisplayName     string    `json:"displayName"`
	CertificateType string    `json:"certificateType"`
	Platform        string    `json:"platform"`
	ExpirationDate  time.Time `json:"expirationDate"`
}

type certificateResource struct {
	ID         string                `json:"id"`
	Type       string                `json:"type"`
	Attributes certificateAttributes `json:"attributes"`
}

type certificateListDocument struct {
	Data  []certificateResource `json:"data"`
	Links pagedLinks            `json:"links"`
}

// ListCertificates returns every certificate of the given type.
func (c *Client) ListCertificates(certType string) ([]types.Certificate, error) {
	query := url.Values{}
	query.Set("filter[certificateType]", certType)
	query.Set("limit", strconv.Itoa(defaultPageSize))

	var certs []types.Certificate
	next := "/certificates"
	for next != "" {
		var doc certificateListDocument
		if err := c.do("GET", next, query, nil, &doc); err != nil {
			return nil, err
		}
		for _, res := range doc.Data {
			certs = append(certs, types.Certificate{
				ID:              res.ID,
				Name:            res.Attributes.Name,
				DisplayName:     res.Attributes.DisplayName,
				CertificateType: res.Attributes.CertificateType,
				Platform:        res.Attributes.Platform,
				ExpirationDate:  res.Attributes.ExpirationDate,
			})
		}
		next = doc.Links.Next
		query = nil // the next link already carries the query
	}
	return certs, nil
}
