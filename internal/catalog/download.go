package catalog

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/config"
	"github.com/Belphemur/titlovi/internal/models"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Download fetches the raw payload of a subtitle, usually a zip archive
func (c *HTTPClient) Download(ctx context.Context, mediaID int, contentType models.ContentType) ([]byte, error) {
	logger := config.GetLogger()

	query := url.Values{}
	query.Set("mediaid", strconv.Itoa(mediaID))
	query.Set("type", strconv.Itoa(int(contentType)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.downloadURL, OpDownload, query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(OpDownload, req)
	if err != nil {
		return nil, err
	}

	// The site answers unknown or throttled downloads with a 200 HTML page
	if isHTML(resp.contentType, resp.body) {
		title := htmlTitle(resp.body, resp.contentType)
		logger.Warn().Int("mediaID", mediaID).Str("title", title).Msg("Catalog returned an HTML page instead of a subtitle")
		return nil, apperrors.NewTransportError(OpDownload, http.StatusOK, fmt.Errorf("html page returned: %q", title))
	}

	logger.Debug().Int("mediaID", mediaID).Int("size", len(resp.body)).Msg("Downloaded subtitle payload")
	return resp.body, nil
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// htmlTitle extracts the <title> of an HTML payload, decoding legacy charsets first
func htmlTitle(body []byte, contentType string) string {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
