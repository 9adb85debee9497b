package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PrintRequest is the body accepted by the local print service.
type PrintRequest struct {
	Printer string `json:"printer"`
	Content string `json:"content"`
	// Raw sends Content to the printer without driver formatting (ESC/POS text).
	Raw bool `json:"raw"`
}

type PrintResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PrintBridge talks to the print service running next to the register,
// which owns the USB/serial thermal printers.
type PrintBridge struct {
	baseURL    string
	httpClient *http.Client
}

func NewPrintBridge(baseURL string) *PrintBridge {
	return &PrintBridge{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Imprimir sends plain text to the named printer.
func (b *PrintBridge) Imprimir(ctx context.Context, printer, content string) error {
	body, err := json.Marshal(PrintRequest{Printer: printer, Content: content, Raw: true})
	if err != nil {
		return fmt.Errorf("print: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/print", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("print: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("print: bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("print: bridge returned %d", resp.StatusCode)
	}

	var result PrintResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("print: decode response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("print: %s", result.Message)
	}
	return nil
}
