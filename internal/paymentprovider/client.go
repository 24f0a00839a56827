// Package paymentprovider реализует REST-клиент платёжного провайдера.
// Сервис доверяет из ответов провайдера только полю status; квоты и цены
// всегда перечитываются из каталога планов на стороне сервера.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Client — HTTP-клиент API платёжного провайдера.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// New создаёт новый клиент провайдера. Таймаут ограничивает каждый запрос.
func New(apiURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		secretKey:  secretKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) (*Intent, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// CreateIntent отправляет запрос на создание платёжного намерения.
func (c *Client) CreateIntent(ctx context.Context, reqParams CreateIntentRequest) (*Intent, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/v1/payment_intents", reqParams)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// RetrieveIntent запрашивает текущее состояние платёжного намерения по ID.
func (c *Client) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/payment_intents/"+id, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}
