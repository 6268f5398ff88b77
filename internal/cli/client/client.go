// Package client is a thin HTTP client over the admin API in
// internal/httpapi, used by cmd/pcdctl so the CLI never has to know
// about the FSM, the registry, or any other server-internal type.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to one PCD Manager admin API instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{baseURL: baseURL, token: token, http: &http.Client{Timeout: 10 * time.Second}}
}

type ConnectionView struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// ListConnections calls GET /api/v1/admin/connections.
func (c *Client) ListConnections() ([]ConnectionView, error) {
	var out []ConnectionView
	if err := c.do(http.MethodGet, "/api/v1/admin/connections", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForceRelease calls POST /api/v1/admin/connections/{id}/release.
func (c *Client) ForceRelease(id string) error {
	return c.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/connections/%s/release", id), nil, nil)
}

// ForceAbort calls POST /api/v1/admin/connections/{id}/abort.
func (c *Client) ForceAbort(id string) error {
	return c.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/connections/%s/abort", id), nil, nil)
}

// ConfigObject and ConfigAttribute mirror httpapi's configObjectRequest
// and avaRequest so pcdctl can build a registration body without
// importing the server package.
type ConfigAttribute struct {
	AttributeID uint16 `json:"attribute_id"`
	ValueHex    string `json:"value_hex"`
}

type ConfigObject struct {
	ObjClass   uint16            `json:"obj_class"`
	ObjHandle  uint16            `json:"obj_handle"`
	Attributes []ConfigAttribute `json:"attributes"`
}

// RegisterExtConfigRequest mirrors httpapi.registerExtConfigRequest.
type RegisterExtConfigRequest struct {
	SystemIDHex    string         `json:"system_id_hex"`
	ConfigReportID uint16         `json:"config_report_id"`
	Objects        []ConfigObject `json:"objects"`
}

// RegisterExtConfig calls POST /api/v1/admin/extconfig.
func (c *Client) RegisterExtConfig(req RegisterExtConfigRequest) error {
	return c.do(http.MethodPost, "/api/v1/admin/extconfig", req, nil)
}

func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pcd-manager: %s %s: %s: %s", method, path, resp.Status, string(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
