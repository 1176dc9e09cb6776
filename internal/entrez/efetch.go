package entrez

import (
	"net/url"
	"strconv"
	"strings"
)

// FetchFASTA retrieves sequence records in FASTA text for the joined id list,
// windowed by retstart/retmax to respect server batch limits. The id list is
// posted in the request body; a contig set near the link cap would not fit in
// a URL. The raw body is returned; the caller parses it.
func (c *Client) FetchFASTA(db string, ids []string, retStart, retMax int) ([]byte, error) {
	var body []byte
	err := c.withRetry("efetch", func() error {
		params := url.Values{}
		params.Set("db", db)
		params.Set("id", strings.Join(ids, ","))
		params.Set("rettype", "fasta")
		params.Set("retmode", "text")
		params.Set("retstart", strconv.Itoa(retStart))
		params.Set("retmax", strconv.Itoa(retMax))

		data, err := c.post("efetch.fcgi", params)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
