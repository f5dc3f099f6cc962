// sample implementation, do not build or test
//go:build ignore

package main

// Minimal operator client for the /api/admin endpoints: uploads a serial
// number file and prints the registrations table.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type Registration struct {
	ID               int64  `json:"id"`
	SerialNumber     string `json:"serialNumber"`
	ProductID        int64  `json:"productId"`
	ProductName      string `json:"productName"`
	UserID           int64  `json:"userId"`
	UserLogin        string `json:"userLogin"`
	RegistrationDate string `json:"registrationDate"`
	ProofURL         string `json:"proofUrl"`
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ImportSerials uploads a .csv, .txt, .xls or .xlsx file of
// "serial_number,product_id" lines.
func (c *Client) ImportSerials(path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/admin/registrations/import", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out ImportResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Registrations() ([]Registration, error) {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+"/api/admin/registrations", nil)
	if err != nil {
		return nil, err
	}
	var out []Registration
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("X-API-Key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: adminclient serials.csv")
		os.Exit(2)
	}

	c := NewClient(os.Getenv("PRODREG_URL"), os.Getenv("ADMIN_API_KEY"))

	res, err := c.ImportSerials(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("imported %d, skipped %d\n", res.Imported, res.Skipped)

	rows, err := c.Registrations()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, r := range rows {
		owner := "unclaimed"
		if r.UserID != 0 {
			owner = r.UserLogin
		}
		fmt.Printf("%-20s %-30s %-12s %s\n", r.SerialNumber, r.ProductName, owner, r.RegistrationDate)
	}
}
