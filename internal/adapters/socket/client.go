package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/corey/adsaver/internal/ports"
)

// Client connects to the adsaver daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Generate sends a generate request. Large triple generations can take a
// while, so the deadline is generous.
func (c *Client) Generate(p GenerateParams) (*GenerateResult, error) {
	var result GenerateResult
	if err := c.invoke(MethodGenerate, p, &result, 60*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Sort sends a sort request. With empty keywords the daemon re-sorts its
// last result.
func (c *Client) Sort(p SortParams) (*SortResult, error) {
	var result SortResult
	if err := c.invoke(MethodSort, p, &result, 30*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.invoke(MethodHealth, nil, &result, 5*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	return c.invoke(MethodShutdown, nil, nil, 5*time.Second)
}

// SaveList sends a lists.save request.
func (c *Client) SaveList(p SaveListParams) (*ports.ListSummary, error) {
	var result ports.ListSummary
	if err := c.invoke(MethodListSave, p, &result, 60*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetList sends a lists.get request.
func (c *Client) GetList(ref ListRef) (*ports.KeywordList, error) {
	var result ports.KeywordList
	if err := c.invoke(MethodListGet, ref, &result, 10*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// Lists sends a lists.list request.
func (c *Client) Lists(p ListsParams) (*ListsResult, error) {
	var result ListsResult
	if err := c.invoke(MethodListList, p, &result, 10*time.Second); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteList sends a lists.delete request.
func (c *Client) DeleteList(ref ListRef) error {
	return c.invoke(MethodListDelete, ref, nil, 10*time.Second)
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// invoke performs one call and decodes the result into out (if non-nil).
func (c *Client) invoke(method string, params, out interface{}, timeout time.Duration) error {
	resp, err := c.callWithTimeout(Request{ID: "1", Method: method, Params: params}, timeout)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	// Re-marshal the generic result into the method's result type
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 256*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		switch resp.Code {
		case CodeNotFound:
			return nil, fmt.Errorf("server error: %w: %s", ports.ErrNotFound, resp.Error)
		case CodeInvalid:
			return nil, fmt.Errorf("server error: %w: %s", ports.ErrInvalid, resp.Error)
		}
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
